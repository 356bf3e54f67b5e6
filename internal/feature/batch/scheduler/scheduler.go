// Package scheduler schedules the periodic CSV import job.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"crypto_backend/internal/feature/batch/usecase"
)

// importTimeout bounds a single scheduled import run.
const importTimeout = 5 * time.Minute

// Scheduler runs the import usecase on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	importer *usecase.ImportUsecase
	log      *slog.Logger
}

// NewScheduler creates a new Scheduler around the given import usecase.
func NewScheduler(importer *usecase.ImportUsecase, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		importer: importer,
		log:      log,
	}
}

// Register adds the import job under the given cron spec (standard 5-field
// syntax, e.g. "0 1 * * *" for 01:00 daily).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runImport); err != nil {
		return fmt.Errorf("register import job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runImport() {
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	s.log.Info("running scheduled import")
	if _, err := s.importer.Run(ctx); err != nil {
		if errors.Is(err, usecase.ErrJobAlreadyRunning) {
			s.log.Warn("scheduled import skipped, job already running")
			return
		}
		s.log.Error("scheduled import failed", "error", err)
	}
}
