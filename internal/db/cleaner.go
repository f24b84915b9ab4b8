package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger permanently removes records soft-deleted before a cutoff.
type Purger interface {
	PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartSoftDeleteCleaner purges soft-deleted expenses older than retention
// every interval until ctx is cancelled.
func StartSoftDeleteCleaner(
	ctx context.Context,
	p Purger,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rows, err := p.PurgeDeleted(ctx, time.Now().Add(-retention))
				if err != nil {
					log.Error("failed to clean soft-deleted expenses", zap.Error(err))
					continue
				}
				if rows > 0 {
					log.Info("cleaned soft-deleted expenses", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
