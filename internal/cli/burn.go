package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/leviosa/internal/audio"
	"github.com/mgpai22/leviosa/internal/subtitle"
	"github.com/mgpai22/leviosa/internal/video"
)

var burnCmd = &cobra.Command{
	Use:   "burn [video_file] [subtitle_file]",
	Short: "Burn an existing SRT file into a video",
	Long: `Re-encode a video with the cues of an SRT file rendered into the frames.

The subtitle file is parsed first so a broken file is reported before ffmpeg
starts a long encode.

Examples:
  leviosa burn talk.mp4 talk.srt
  leviosa burn talk.mp4 talk.srt -o talk_subtitled.mp4`,
	Args: cobra.ExactArgs(2),
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)
}

func runBurn(cmd *cobra.Command, args []string) error {
	videoPath, subtitlePath := args[0], args[1]
	outputPath, _ := cmd.Flags().GetString("output")

	if !audio.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported video type: %s", filepath.Ext(videoPath))
	}
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("file not found: %s", videoPath)
	}

	segments, err := subtitle.Open(subtitlePath)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("%s contains no subtitles", subtitlePath)
	}

	if outputPath == "" {
		ext := filepath.Ext(videoPath)
		outputPath = strings.TrimSuffix(videoPath, ext) + "_subtitled" + ext
	}

	logger.Infow("Burning subtitles",
		"video", videoPath,
		"subtitles", subtitlePath,
		"cues", len(segments),
		"output", outputPath,
	)

	if err := video.NewProcessor().BurnSubtitles(cmd.Context(), videoPath, subtitlePath, outputPath); err != nil {
		return fmt.Errorf("burn-in failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Video with subtitles: %s\n", describeFile(outputPath))
	return nil
}
