package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// RunJanitor sweeps expired counters every interval until ctx is done.
func RunJanitor(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("rate limit janitor started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("rate limit janitor stopped")
			return
		case now := <-ticker.C:
			removed, err := sweeper.Sweep(ctx, now)
			if err != nil {
				logger.Error("rate limit sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Debug("rate limit entries expired", zap.Int("removed", removed))
			}
		}
	}
}
