package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

const (
	// RetryAttempts bounds how often a contended write is retried.
	RetryAttempts = 5
	// RetryBaseDelay is the first backoff interval; it doubles per attempt.
	RetryBaseDelay = 200 * time.Millisecond
)

// Retryable reports whether err is a transient write conflict worth another
// attempt: serialization failure, deadlock, or a lock that was not available.
func Retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// RetryTx runs fn inside WithTx, retrying transient conflicts with bounded
// exponential backoff. After the attempts are exhausted the error is wrapped
// in shared.ErrContention so callers can surface it explicitly instead of
// silently dropping the write.
func RetryTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	delay := RetryBaseDelay
	var lastErr error
	for attempt := 0; attempt < RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		lastErr = WithTx(ctx, pool, fn)
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("%w: %v", shared.ErrContention, lastErr)
}
