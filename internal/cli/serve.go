package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/leviosa/internal/ffmpeg"
	"github.com/mgpai22/leviosa/internal/pipeline"
	"github.com/mgpai22/leviosa/internal/server"
	"github.com/mgpai22/leviosa/internal/video"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload web UI and JSON API",
	Long: `Serve a small web page where videos can be uploaded for transcription,
plus the JSON endpoint behind it:

  GET  /                   upload form
  POST /api/transcriptions multipart: video, mode, language, format, burn
  GET  /outputs/{name}     download a generated file
  GET  /healthz            liveness check

The speech recognizer is created once at startup and shared by all requests.
Old uploads and outputs are removed on the retention schedule.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("bind", "", "Listen address (default from config, 127.0.0.1:5000)")
	serveCmd.Flags().Int64("max-jobs", 0, "Maximum number of uploads processed at once")
	addTranscriberFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
		cfg.Server.Bind = bind
	}
	if jobs, _ := cmd.Flags().GetInt64("max-jobs"); jobs > 0 {
		cfg.Server.MaxConcurrentJobs = jobs
	}
	applyTranscriberFlags(cmd)

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// resolve (and possibly download) ffmpeg before accepting uploads
	bins, err := ffmpeg.Ensure()
	if err != nil {
		return fmt.Errorf("ffmpeg unavailable: %w", err)
	}
	logger.Debugw("Using ffmpeg", "ffmpeg", bins.FFmpeg, "ffprobe", bins.FFprobe)

	transcriber, err := newTranscriber(ctx)
	if err != nil {
		return err
	}

	p := pipeline.New(video.NewProcessor(), transcriber, cfg.Paths.OutputDir,
		pipeline.WithWorkDir(workDir()),
		pipeline.WithLogger(logger.With("component", "pipeline")),
	)

	srv := server.NewServer(p, cfg.Paths.UploadDir, cfg.Paths.OutputDir,
		server.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		server.WithMaxConcurrentJobs(cfg.Server.MaxConcurrentJobs),
		server.WithDefaultLanguage(cfg.Transcription.Language),
		server.WithLogger(logger.With("component", "http")),
	)

	if cfg.MaxAge() > 0 {
		janitor := server.NewJanitor(cfg.MaxAge(), logger.With("component", "janitor"),
			cfg.Paths.UploadDir, cfg.Paths.OutputDir)
		if err := janitor.Start(cfg.Retention.Schedule); err != nil {
			return err
		}
		defer func() { <-janitor.Stop().Done() }()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.Bind)
	}()

	logger.Infow("Server listening",
		"addr", cfg.Server.Bind,
		"provider", cfg.Transcription.Provider,
		"uploads", cfg.Paths.UploadDir,
		"outputs", cfg.Paths.OutputDir,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Open http://%s in your browser\n", cfg.Server.Bind)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
