package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/leviosa/internal/audio"
	"github.com/mgpai22/leviosa/internal/language"
	"github.com/mgpai22/leviosa/internal/pipeline"
	"github.com/mgpai22/leviosa/internal/subtitle"
	"github.com/mgpai22/leviosa/internal/video"
)

var generateCmd = &cobra.Command{
	Use:   "generate [media_file]",
	Short: "Generate a transcript and subtitles for a video",
	Long: `Generate a transcript and subtitles for the specified video (or audio) file.

The audio track is extracted with ffmpeg as 16 kHz mono WAV and sent to the
configured speech recognizer. A plain-text transcript is always written. In
subtitle mode a caption file is written too; when the recognizer returns no
timing, each sentence is given a fixed 2.5 second slot instead.

Output files are written next to the input unless --output is given.

Examples:
  leviosa generate lecture.mp4
  leviosa generate lecture.mp4 --mode text
  leviosa generate interview.mkv -l en --format vtt --show
  leviosa generate talk.mp4 --burn
  leviosa generate talk.mp4 --provider gemini -k YOUR_KEY -d 5`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		StringP("mode", "m", "subtitle", "Output mode: text (transcript only) or subtitle")
	generateCmd.Flags().
		StringP("format", "f", "srt", "Subtitle format (srt, vtt)")
	generateCmd.Flags().
		Bool("burn", false, "Also write a copy of the video with the subtitles burned in")
	generateCmd.Flags().
		Bool("show", false, "Print the subtitle cues as a table")
	addTranscriberFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	modeStr, _ := cmd.Flags().GetString("mode")
	formatStr, _ := cmd.Flags().GetString("format")
	burn, _ := cmd.Flags().GetBool("burn")
	show, _ := cmd.Flags().GetBool("show")
	outputPath, _ := cmd.Flags().GetString("output")

	mode, err := pipeline.ParseMode(modeStr)
	if err != nil {
		return err
	}
	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if burn && mode != pipeline.ModeSubtitle {
		return fmt.Errorf("--burn needs --mode subtitle")
	}

	applyTranscriberFlags(cmd)

	outputDir := filepath.Dir(mediaPath)
	baseName := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	if outputPath != "" {
		outputDir = filepath.Dir(outputPath)
		baseName = strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
		if ext := filepath.Ext(outputPath); ext != "" && ext != ".txt" {
			format = subtitle.GetFormatFromExtension(outputPath)
		}
	}

	logger.Infow("Starting subtitle generation",
		"input", mediaPath,
		"output_dir", outputDir,
		"mode", mode,
		"format", format,
		"provider", cfg.Transcription.Provider,
		"language", cfg.Transcription.Language,
		"chunk_minutes", cfg.Transcription.ChunkMinutes,
	)

	transcriber, err := newTranscriber(ctx)
	if err != nil {
		return err
	}

	p := pipeline.New(video.NewProcessor(), transcriber, outputDir,
		pipeline.WithWorkDir(workDir()),
		pipeline.WithLogger(logger),
	)

	outcome, err := p.Run(ctx, pipeline.Request{
		VideoPath: mediaPath,
		Mode:      mode,
		Format:    format,
		Burn:      burn,
		BaseName:  baseName,
	})
	if err != nil {
		return err
	}

	printOutcome(cmd, outcome, show)
	return nil
}

func printOutcome(cmd *cobra.Command, outcome *pipeline.Outcome, show bool) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Transcript written: %s\n", describeFile(outcome.TranscriptPath))
	if outcome.Language != "" {
		fmt.Fprintf(out, "  Language: %s (%s)\n", language.DisplayName(outcome.Language), outcome.Language)
	}
	if outcome.Duration > 0 {
		fmt.Fprintf(out, "  Duration: %s\n", outcome.Duration.String())
	}

	if outcome.Segments == nil {
		return
	}

	fmt.Fprintf(out, "Subtitles generated successfully: %s\n", describeFile(outcome.SubtitlePath))
	fmt.Fprintf(out, "  Entries: %d\n", len(subtitle.Cues(outcome.Segments.List())))
	if outcome.Segments.Kind() == subtitle.KindSynthetic {
		fmt.Fprintf(out, "  Timing: estimated, %.1fs per sentence\n", subtitle.SyntheticDuration)
	}
	if outcome.BurnedPath != "" {
		fmt.Fprintf(out, "Video with subtitles: %s\n", describeFile(outcome.BurnedPath))
	}

	if show {
		fmt.Fprintln(out, renderSegmentTable(outcome.Segments.List()))
	}
}
