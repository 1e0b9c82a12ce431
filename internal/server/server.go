// Package server exposes the transcription pipeline over HTTP: an upload
// form, a JSON API and downloads of the generated files.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mgpai22/leviosa/internal/logging"
	"github.com/mgpai22/leviosa/internal/pipeline"
)

//go:embed web/index.html
var webFS embed.FS

var indexTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

const (
	defaultMaxUpload = 500 << 20
	defaultMaxJobs   = 2
	// multipart parts beyond this are spooled to disk
	formMemoryLimit = 32 << 20
)

// Runner is the part of the pipeline the server needs.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Outcome, error)
}

type Server struct {
	runner    Runner
	uploadDir string
	outputDir string

	maxUpload       int64
	maxJobs         int64
	defaultLanguage string
	jobs            *semaphore.Weighted
	logger          *logging.Logger

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

// WithMaxUploadBytes caps the size of a request body.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithMaxConcurrentJobs bounds how many uploads are processed at once;
// further requests wait for a slot.
func WithMaxConcurrentJobs(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxJobs = n
		}
	}
}

func WithDefaultLanguage(lang string) Option {
	return func(s *Server) {
		s.defaultLanguage = lang
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(runner Runner, uploadDir, outputDir string, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		uploadDir: uploadDir,
		outputDir: outputDir,
		maxUpload: defaultMaxUpload,
		maxJobs:   defaultMaxJobs,
		logger:    logging.Nop(),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.jobs = semaphore.NewWeighted(s.maxJobs)
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/transcriptions", s.handleTranscribe)
	s.mux.HandleFunc("/outputs/", s.handleDownload)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/", s.handleIndex)
}
