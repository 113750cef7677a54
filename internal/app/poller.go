package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is the sync cadence when none is configured.
const DefaultPollInterval = 15 * time.Second

// cycler runs one sync cycle. *Engine implements it.
type cycler interface {
	Sync(ctx context.Context) (CycleResult, error)
}

// StartPoller launches a background goroutine that runs a sync cycle right
// away and then at a fixed cadence. Failed cycles are retried on the next
// tick with no backoff. The returned channel closes once the goroutine exits.
func StartPoller(ctx context.Context, c cycler, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if _, err := c.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Debug("poll cycle failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}
