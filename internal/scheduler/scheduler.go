// Package scheduler runs the periodic refresh of the organization directory.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher reloads a cached dataset.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler wraps robfig/cron and fires the refresh job on spec.
type Scheduler struct {
	cron    *cron.Cron
	target  Refresher
	spec    string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Scheduler for spec, e.g. "@every 6h". Each run gets at most
// timeout to finish; overlapping runs are skipped.
func New(target Refresher, spec string, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		target:  target,
		spec:    spec,
		timeout: timeout,
		logger:  logger,
	}
}

// Start registers the job and starts the scheduler. One refresh also runs
// immediately so the cache is warm before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Organization refresh scheduled", "spec", s.spec)

	go s.run(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running refresh to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Organization refresh stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.target.Refresh(ctx); err != nil {
		s.logger.Error("Organization refresh failed", "error", err, "took", time.Since(start))
		return
	}
	s.logger.Info("Organization refresh complete", "took", time.Since(start))
}
