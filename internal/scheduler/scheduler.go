// Package scheduler keeps stored tournament statuses in line with their dates.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type StatusSyncer interface {
	SyncStatuses(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	syncer  StatusSyncer
	timeout time.Duration
	logger  *slog.Logger
}

func New(syncer StatusSyncer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		syncer:  syncer,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Start registers the sync job on schedule and starts the cron loop.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule status sync %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("status sync scheduled", "schedule", schedule)
	return nil
}

// Stop waits for a running sync to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	changed, err := s.syncer.SyncStatuses(ctx)
	if err != nil {
		s.logger.Error("status sync failed", "error", err)
		return
	}
	if changed > 0 {
		s.logger.Info("status sync updated tournaments", "count", changed)
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
