package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler owns the main loop: one immediate cycle, then one per interval.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs the runner at the given interval.
func NewScheduler(runner *Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the cycle loop. It returns nil when ctx is cancelled (graceful
// shutdown). Hitting the daily limit is not fatal; the loop sleeps until the
// next interval as usual.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	if _, err := s.runner.Cycle(ctx); err != nil {
		switch {
		case errors.Is(err, ErrDailyLimit):
			s.logger.Warn("cycle stopped at daily limit")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		default:
			s.logger.Error("cycle failed", "error", err)
		}
	}
}
