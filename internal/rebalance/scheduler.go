package rebalance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CycleRunner is what the scheduler drives once per tick.
type CycleRunner interface {
	CheckCycle(ctx context.Context) ([]Result, error)
}

// Scheduler fires check cycles at a fixed interval. Cycles never overlap: a
// tick that lands while a cycle is still running is served once it finishes,
// and at most one pending tick is kept.
type Scheduler struct {
	interval time.Duration
	runner   CycleRunner
	logger   *zap.Logger
}

func NewScheduler(interval time.Duration, runner CycleRunner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{interval: interval, runner: runner, logger: logger}
}

// Run blocks, executing one cycle immediately and then one per tick, until
// the context ends. Cycle errors are logged, not returned: a bad cycle must
// not stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.runner == nil {
		return fmt.Errorf("cycle runner is nil")
	}
	if s.interval <= 0 {
		return fmt.Errorf("check interval must be positive")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runCycle(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	results, err := s.runner.CheckCycle(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.logger.Error("check cycle failed", zap.Error(err))
		return
	}

	var inRange, rebalanced, wouldRebalance, failed int
	for _, res := range results {
		switch res.State {
		case StateInRange:
			inRange++
		case StateDone:
			rebalanced++
		case StateOutOfRange:
			wouldRebalance++
		case StateFailed:
			failed++
		}
	}
	s.logger.Info("check cycle finished",
		zap.Int("positions", len(results)),
		zap.Int("in_range", inRange),
		zap.Int("rebalanced", rebalanced),
		zap.Int("would_rebalance", wouldRebalance),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
}
