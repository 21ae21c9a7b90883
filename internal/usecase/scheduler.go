package usecase

import (
	"context"
	"time"

	"SentiPulse/internal/domain/models"
	applogger "SentiPulse/pkg/logger"
)

// CycleRunner is what the scheduler drives. Satisfied by SentimentAggregator.
type CycleRunner interface {
	Aggregate(ctx context.Context) (*models.AggregateResult, error)
}

// Scheduler drives the aggregator on a fixed interval plus on-demand
// triggers. All cycles run on the scheduler's own goroutine; the trigger
// channel has depth one, so manual triggers arriving while a cycle is in
// flight coalesce instead of piling up.
type Scheduler struct {
	runner   CycleRunner
	logger   *applogger.Logger
	interval time.Duration
	trigger  chan struct{}
}

// NewScheduler creates a scheduler for the given cycle runner.
func NewScheduler(runner CycleRunner, logger *applogger.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		logger:   logger,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Start runs an initial cycle, then loops until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", applogger.Duration("interval_ms", s.interval))
	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.trigger:
			s.runCycle(ctx)
		}
	}
}

// TriggerNow requests an extra cycle. Returns false when a trigger is
// already pending.
func (s *Scheduler) TriggerNow() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := s.runner.Aggregate(ctx)
	if err != nil {
		// Log and wait for the next tick; a failed cycle is not fatal.
		s.logger.Error("aggregation cycle failed", applogger.Error(err))
		return
	}
	if result == nil {
		return
	}
	s.logger.Info("cycle complete",
		applogger.Float64("bullish_pct", result.BullishPct),
		applogger.Float64("bearish_pct", result.BearishPct),
		applogger.Int("total_posts", result.TotalPosts),
	)
}
