package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ncrtrack/ncrtrack/internal/cache"
)

// RepositoryPort defines data access methods for analytics.
type RepositoryPort interface {
	Summary(ctx context.Context) (Summary, error)
}

// SummaryTTL bounds staleness while record mutations are already
// invalidating the listing tag.
const SummaryTTL = 5 * time.Minute

// Service serves the cached dashboard.
type Service struct {
	repo  RepositoryPort
	cache *cache.TaggedCache
	group singleflight.Group
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, tagged *cache.TaggedCache) *Service {
	return &Service{repo: repo, cache: tagged}
}

// Summary returns the dashboard aggregates, computing them at most once per
// cache window. Concurrent misses collapse into one computation.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	key := cache.SummaryKey("all")
	var cached Summary
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	result, err, _ := s.group.Do(key, func() (any, error) {
		summary, err := s.repo.Summary(ctx)
		if err != nil {
			return Summary{}, err
		}
		if live := summary.Active + summary.Finalized; live > 0 {
			summary.ResolutionRate = float64(summary.Finalized) / float64(live)
		}
		s.cache.SetJSON(ctx, key, summary, SummaryTTL, []string{cache.TagList})
		return summary, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return result.(Summary), nil
}
