package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper releases per-session state idle since before cutoff and reports
// how many sessions it let go.
type Sweeper interface {
	Sweep(cutoff time.Time) int
}

// SweepIdle runs every sweeper once with the same cutoff.
func SweepIdle(cutoff time.Time, logger *zap.Logger, sweepers ...Sweeper) int {
	total := 0
	for _, sw := range sweepers {
		total += sw.Sweep(cutoff)
	}
	if total > 0 {
		logger.Debug("idle sessions released", zap.Int("count", total), zap.Time("cutoff", cutoff))
	}
	return total
}

// RunJanitor sweeps every interval until ctx ends. State untouched for
// longer than ttl is released; by then the session token has expired too.
func RunJanitor(ctx context.Context, ttl, interval time.Duration, logger *zap.Logger, sweepers ...Sweeper) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			SweepIdle(now.Add(-ttl), logger, sweepers...)
		}
	}
}
