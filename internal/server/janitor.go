package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"github.com/mgpai22/leviosa/internal/logging"
)

// Janitor deletes uploads and generated files once they are older than
// maxAge. Only regular files directly inside the watched directories are
// considered.
type Janitor struct {
	dirs   []string
	maxAge time.Duration
	logger *logging.Logger
	now    func() time.Time

	cron *cron.Cron
}

func NewJanitor(maxAge time.Duration, logger *logging.Logger, dirs ...string) *Janitor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Janitor{
		dirs:   dirs,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

// Start runs a sweep on the given cron schedule (standard five fields or a
// descriptor such as "@hourly").
func (j *Janitor) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { j.Sweep() }); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}
	j.cron = c
	c.Start()
	j.logger.Infow("Retention sweeps scheduled",
		"schedule", schedule,
		"max_age", j.maxAge.String(),
	)
	return nil
}

// Stop halts the schedule; the returned context is done once a running
// sweep has finished.
func (j *Janitor) Stop() context.Context {
	if j.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return j.cron.Stop()
}

// Sweep removes expired files and reports how many went and their total size.
func (j *Janitor) Sweep() (removed int, freed uint64) {
	if j.maxAge <= 0 {
		return 0, 0
	}
	cutoff := j.now().Add(-j.maxAge)

	for _, dir := range j.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				j.logger.Warnw("Cannot read directory", "dir", dir, "error", err)
			}
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				j.logger.Warnw("Failed to remove expired file", "path", path, "error", err)
				continue
			}
			removed++
			freed += uint64(info.Size())
		}
	}

	if removed > 0 {
		j.logger.Infow("Removed expired files",
			"count", removed,
			"freed", humanize.Bytes(freed),
		)
	}
	return removed, freed
}
