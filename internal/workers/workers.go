package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Flusher persists state whose last write failed.
type Flusher interface {
	Flush(ctx context.Context) error
	Pending() bool
}

// StartFlushWorker retries pending writes every interval until ctx is done,
// then makes one last attempt so a clean shutdown does not drop changes.
func StartFlushWorker(ctx context.Context, f Flusher, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				flush(ctx, f, logger)
			case <-ctx.Done():
				flush(context.WithoutCancel(ctx), f, logger)
				return
			}
		}
	}()

	return done
}

func flush(ctx context.Context, f Flusher, logger *zap.Logger) {
	if !f.Pending() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := f.Flush(ctx); err != nil {
		logger.Warn("pending places still not persisted", zap.Error(err))
	}
}
