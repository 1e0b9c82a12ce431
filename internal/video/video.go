package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/leviosa/internal/ffmpeg"
)

// ErrNoAudio means ffmpeg finished but left no audio file behind, which is
// what happens for inputs without an audio stream.
var ErrNoAudio = errors.New("no audio extracted from video")

// defines interface for video processing operations
type Processor interface {
	// extracts audio from video file
	ExtractAudio(
		ctx context.Context,
		videoPath, outputPath string,
		opts ExtractAudioOptions,
	) error

	// re-encodes the video with captions rendered into the frames
	BurnSubtitles(
		ctx context.Context,
		videoPath, subtitlePath, outputPath string,
	) error
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // Output format (wav, mp3, aac, flac)
	SampleRate int    // Sample rate in Hz (e.g., 16000, 44100, 48000)
	Channels   int    // Number of channels (1 = mono, 2 = stereo)
	Bitrate    string // Bitrate for lossy formats (e.g., "128k", "320k")
}

// 16kHz mono 16-bit PCM, what speech models expect
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// fixed caption look for burned-in subtitles
const BurnStyle = "FontName=Arial,FontSize=20,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,BorderStyle=1,Outline=2,Shadow=1,MarginV=20"

type runFunc func(ctx context.Context, binary string, args []string) ([]byte, error)

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath func() (string, error)
	run        runFunc
}

func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{
		ffmpegPath: ffmpegbin.FFmpegPath,
		run:        runCommand,
	}
}

// extracts audio from video file
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := ffmpeg.Input(videoPath).
		Output(outputPath, extractKwArgs(opts)).
		OverWriteOutput().
		GetArgs()

	if err := p.exec(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrNoAudio, videoPath)
	}

	return nil
}

// re-encodes videoPath with subtitlePath burned in, keeping the audio stream
func (p *DefaultProcessor) BurnSubtitles(
	ctx context.Context,
	videoPath, subtitlePath, outputPath string,
) error {
	for _, path := range []string{videoPath, subtitlePath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vf":  subtitlesFilter(subtitlePath),
		"c:a": "copy",
	}

	args := ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs()

	if err := p.exec(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg burn-in failed: %w", err)
	}

	return nil
}

func (p *DefaultProcessor) exec(ctx context.Context, args []string) error {
	binary, err := p.ffmpegPath()
	if err != nil {
		return err
	}
	args = append([]string{"-hide_banner", "-loglevel", "error"}, args...)
	if output, err := p.run(ctx, binary, args); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func extractKwArgs(opts ExtractAudioOptions) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",              // No video
		"ar": opts.SampleRate, // Sample rate
		"ac": opts.Channels,   // Channels
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	return kwargs
}

func subtitlesFilter(subtitlePath string) string {
	return fmt.Sprintf("subtitles=filename=%s:force_style='%s'",
		escapeFilterValue(subtitlePath), BurnStyle)
}

// escapes a path for use as a filtergraph option value
func escapeFilterValue(value string) string {
	value = filepath.ToSlash(value)
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, "'", `\'`)
	value = strings.ReplaceAll(value, ",", `\,`)
	return value
}

func runCommand(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
