package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/mgpai22/leviosa/internal/language"
)

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transcription.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("transcription.provider: unsupported provider %q (use openai or gemini)", c.Transcription.Provider))
	}

	if lang := c.Transcription.Language; lang != "" && !language.Valid(lang) {
		errs = append(errs, fmt.Errorf("transcription.language: unknown language %q", lang))
	}
	if c.Transcription.ChunkMinutes < 0 {
		errs = append(errs, fmt.Errorf("transcription.chunk_minutes: must be >= 0, got %d", c.Transcription.ChunkMinutes))
	}
	if c.Transcription.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("transcription.concurrency: must be positive, got %d", c.Transcription.Concurrency))
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		errs = append(errs, errors.New("server.bind: must not be empty"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb: must be positive, got %d", c.Server.MaxUploadMB))
	}
	if c.Server.MaxConcurrentJobs <= 0 {
		errs = append(errs, fmt.Errorf("server.max_concurrent_jobs: must be positive, got %d", c.Server.MaxConcurrentJobs))
	}

	if c.Retention.MaxAgeHours < 0 {
		errs = append(errs, fmt.Errorf("retention.max_age_hours: must be >= 0, got %d", c.Retention.MaxAgeHours))
	}
	if c.Retention.MaxAgeHours > 0 {
		if _, err := cron.ParseStandard(c.Retention.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("retention.schedule: %w", err))
		}
	}

	return errors.Join(errs...)
}
