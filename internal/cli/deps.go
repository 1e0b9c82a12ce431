package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mgpai22/leviosa/internal/transcribe"
)

func errUnknownLanguage(lang string) error {
	return fmt.Errorf("unknown language %q: use an ISO 639-1 code or an English language name", lang)
}

// registers the recognizer flags shared by generate and serve
func addTranscriberFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "Transcription provider: openai or gemini (default from config)")
	cmd.Flags().String("model", "", "Model name (default whisper-1 for openai, gemini-2.5-flash for gemini)")
	cmd.Flags().StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY / GEMINI_API_KEY)")
	cmd.Flags().String("base-url", "", "OpenAI-compatible endpoint, e.g. a local whisper server")
	cmd.Flags().IntP("chunk-duration", "d", -1, "Split audio into chunks of this many minutes (0 disables)")
	cmd.Flags().Int("concurrency", 0, "Number of chunks transcribed in parallel")
}

// applies recognizer flags on top of the loaded config
func applyTranscriberFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.Transcription.Provider = strings.ToLower(v)
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Transcription.Model = v
	}
	if v, _ := cmd.Flags().GetString("api-key"); v != "" {
		cfg.Transcription.APIKey = v
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.Transcription.BaseURL = strings.TrimRight(v, "/")
	}
	if v, _ := cmd.Flags().GetInt("chunk-duration"); v >= 0 {
		cfg.Transcription.ChunkMinutes = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Transcription.Concurrency = v
	}
}

// builds the configured recognizer once, wrapped for chunking when enabled
func newTranscriber(ctx context.Context) (transcribe.Transcriber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := transcribe.Provider(cfg.Transcription.Provider)
	apiKey := cfg.APIKey()
	if apiKey == "" && !(provider == transcribe.ProviderOpenAI && cfg.Transcription.BaseURL != "") {
		return nil, fmt.Errorf("%s API key is required: use --api-key or set %s_API_KEY",
			provider, strings.ToUpper(string(provider)))
	}

	inner, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language: cfg.Transcription.Language,
		Model:    cfg.Transcription.Model,
		Prompt:   cfg.Transcription.Prompt,
		BaseURL:  cfg.Transcription.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	if cfg.ChunkDuration() <= 0 {
		return inner, nil
	}
	return transcribe.NewChunkedTranscriber(
		inner,
		cfg.ChunkDuration(),
		cfg.Transcription.Concurrency,
		logger,
	), nil
}

func workDir() string {
	if cfg.Paths.WorkDir != "" {
		return cfg.Paths.WorkDir
	}
	return os.TempDir()
}

// absolute path plus human readable size, for the summary lines
func describeFile(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(path)
	if err != nil {
		return abs
	}
	return fmt.Sprintf("%s (%s)", abs, humanize.IBytes(uint64(info.Size())))
}
