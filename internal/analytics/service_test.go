package analytics

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncrtrack/ncrtrack/internal/cache"
)

type mockRepo struct {
	summary Summary
	calls   int
}

func (m *mockRepo) Summary(context.Context) (Summary, error) {
	m.calls++
	return m.summary, nil
}

func TestSummaryCachedUntilRecordMutation(t *testing.T) {
	repo := &mockRepo{summary: Summary{Total: 12, Active: 9, Finalized: 2, Deleted: 1}}
	tagged := cache.NewTaggedCache(nil, slog.New(slog.DiscardHandler), cache.Config{})
	svc := NewService(repo, tagged)

	ctx := context.Background()
	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(12), first.Total)
	require.InDelta(t, 2.0/11.0, first.ResolutionRate, 1e-9)

	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls, "repeat read served from cache")

	// Any record mutation invalidates the listing tag, which also covers
	// the dashboard.
	tagged.InvalidateByTags(ctx, cache.TagList)
	repo.summary.Total = 13

	refreshed, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(13), refreshed.Total)
	require.Equal(t, 2, repo.calls)
}
