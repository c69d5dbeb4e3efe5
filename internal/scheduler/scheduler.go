// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: pruning old event
// log records past their retention window.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/newsdesk-go/internal/store"
)

// pruneSchedule runs the event pruning job daily at 03:30.
const pruneSchedule = "30 3 * * *"

// Scheduler handles scheduled maintenance tasks.
type Scheduler struct {
	db            *sql.DB
	cron          *cron.Cron
	logger        *slog.Logger
	retentionDays int
}

// New creates a new scheduler instance. retentionDays controls how long
// event log records are kept.
func New(db *sql.DB, logger *slog.Logger, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		cron:          cron.New(),
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start registers the maintenance jobs and starts the cron loop. The first
// pruning pass runs immediately so a long-stopped instance catches up.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(pruneSchedule, func() {
		if err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("failed to prune events", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))

	go func() {
		if err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("failed to prune events on startup", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneEvents deletes event records older than the retention window.
func (s *Scheduler) PruneEvents(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		s.logger.Info("pruned old events", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return nil
}
