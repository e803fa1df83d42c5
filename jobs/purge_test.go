package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ncrtrack/ncrtrack/internal/rnc"
)

type mockPurgeStore struct {
	cutoff  time.Time
	removed int64
}

func (m *mockPurgeStore) PurgeDeletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.cutoff = cutoff
	return m.removed, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateByTags(context.Context, ...string) int {
	c.calls++
	return 1
}

func TestPurgeDeletedHandler(t *testing.T) {
	store := &mockPurgeStore{removed: 3}
	inv := &countingInvalidator{}
	handler := NewPurgeDeletedHandler(store, inv, slog.New(slog.DiscardHandler))

	require.NoError(t, handler(context.Background(), NewPurgeDeletedTask()))
	require.Equal(t, 1, inv.calls)
	require.WithinDuration(t, time.Now().Add(-rnc.DeletedRetention), store.cutoff, time.Minute)
}

func TestPurgeDeletedHandlerNothingToDo(t *testing.T) {
	store := &mockPurgeStore{}
	inv := &countingInvalidator{}
	handler := NewPurgeDeletedHandler(store, inv, slog.New(slog.DiscardHandler))

	require.NoError(t, handler(context.Background(), NewPurgeDeletedTask()))
	require.Zero(t, inv.calls, "empty purge leaves the cache alone")
}
