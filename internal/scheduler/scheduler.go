// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs, currently the nightly
// visit-log retention purge.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/weblab-go/internal/store"
)

// Scheduler handles scheduled maintenance tasks.
type Scheduler struct {
	db            *sql.DB
	cron          *cron.Cron
	logger        *slog.Logger
	retentionDays int
}

// New creates a new scheduler instance. retentionDays of 0 disables the
// visit-log purge.
func New(db *sql.DB, logger *slog.Logger, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		cron:          cron.New(),
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start registers the retention job and begins the cron loop.
func (s *Scheduler) Start() error {
	if s.retentionDays > 0 {
		// Nightly at 03:30
		_, err := s.cron.AddFunc("30 3 * * *", func() {
			if err := s.purgeOldVisits(); err != nil {
				s.logger.Error("failed to purge old visit logs", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// purgeOldVisits deletes visit logs older than the retention window.
func (s *Scheduler) purgeOldVisits() error {
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	deleted, err := store.New(s.db).DeleteVisitsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		s.logger.Info("purged old visit logs", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
