package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ncrtrack/ncrtrack/internal/cache"
	"github.com/ncrtrack/ncrtrack/internal/rnc"
)

// PurgeStore is the slice of the record repository the purge needs.
type PurgeStore interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Invalidator drops cache entries by tag.
type Invalidator interface {
	InvalidateByTags(ctx context.Context, tags ...string) int
}

// NewPurgeDeletedHandler removes records whose retention window expired.
func NewPurgeDeletedHandler(store PurgeStore, invalid Invalidator, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		cutoff := time.Now().Add(-rnc.DeletedRetention)
		removed, err := store.PurgeDeletedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("purge deleted records", slog.Any("error", err))
			return err
		}
		if removed > 0 {
			invalid.InvalidateByTags(ctx, cache.TagList)
			logger.Info("purged deleted records", slog.Int64("removed", removed))
		}
		return nil
	}
}
