package sync

import (
	"context"
	"time"

	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
)

// Runner is the orchestrator surface the scheduler needs.
type Runner interface {
	RunIncremental(ctx context.Context) (*Result, error)
}

// Scheduler runs incremental syncs on a fixed interval, starting with an
// immediate run. A failed run is logged and followed by an extended
// cool-down so one bad run neither kills the service nor spin-loops it.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	cooldown time.Duration
	logger   logger.Logger
}

// NewScheduler builds a scheduler. The cooldown is added to the normal
// interval after a failed run; it defaults to half an hour when unset.
func NewScheduler(runner Runner, interval, cooldown time.Duration) *Scheduler {
	if cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		cooldown: cooldown,
		logger:   logger.GetLogger().WithField("component", "scheduler"),
	}
}

// Run loops until the context is cancelled. The context is the only stop
// signal.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoWithFields("Scheduler starting", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		wait := s.interval
		if _, err := s.runner.RunIncremental(ctx); err != nil {
			// The cool-down extends the normal tick so a persistent
			// failure backs off instead of spin-looping.
			s.logger.WithError(err).Error("Scheduled sync failed, entering cool-down")
			wait = s.interval + s.cooldown
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping")
			return ctx.Err()
		}
	}
}
