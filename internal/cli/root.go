package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/leviosa/internal/config"
	"github.com/mgpai22/leviosa/internal/language"
	"github.com/mgpai22/leviosa/internal/logging"
)

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "leviosa",
	Short: "Speech-to-text transcripts and subtitles for videos",
	Long: `Leviosa extracts the audio from a video, runs speech recognition on it and
writes a plain-text transcript and a subtitle file. It can also burn the
subtitles into a copy of the video, or serve all of this over a small web UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if lang, _ := cmd.Flags().GetString("language"); lang != "" {
			if !language.Valid(lang) {
				return errUnknownLanguage(lang)
			}
			cfg.Transcription.Language = language.ToISO2(lang)
		}

		logger = logging.NewLogger(verbose || cfg.Logging.Verbose)
		if exists {
			logger.Debugw("Loaded configuration", "path", path)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command; Ctrl-C cancels the running operation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to config file (default ./leviosa.toml or ~/.config/leviosa/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Spoken language (code or English name, e.g. vi, en, Spanish)")
}
