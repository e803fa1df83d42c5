package cache

import (
	"sort"
	"sync"
	"time"
)

const (
	// defaultMaxEntries bounds the in-process fallback store.
	defaultMaxEntries = 1024
	// defaultEvictTarget is the size the store is trimmed down to when the
	// bound is exceeded. Oldest-by-insertion entries go first.
	defaultEvictTarget = 768
)

type localEntry struct {
	value     []byte
	createdAt time.Time
	ttl       time.Duration
	tags      []string
}

// localStore is the in-process fallback used when the Redis backend is
// unreachable. The mutex guards only map mutation, never any network call.
type localStore struct {
	mu         sync.Mutex
	entries    map[string]localEntry
	byTag      map[string]map[string]struct{}
	maxEntries int
	target     int
	now        func() time.Time
}

func newLocalStore(maxEntries, target int) *localStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if target <= 0 || target >= maxEntries {
		target = maxEntries * 3 / 4
	}
	return &localStore{
		entries:    make(map[string]localEntry),
		byTag:      make(map[string]map[string]struct{}),
		maxEntries: maxEntries,
		target:     target,
		now:        time.Now,
	}
}

func (s *localStore) set(key string, value []byte, ttl time.Duration, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		s.unindex(key, existing.tags)
	}
	s.entries[key] = localEntry{value: value, createdAt: s.now(), ttl: ttl, tags: tags}
	for _, tag := range tags {
		if s.byTag[tag] == nil {
			s.byTag[tag] = make(map[string]struct{})
		}
		s.byTag[tag][key] = struct{}{}
	}

	if len(s.entries) > s.maxEntries {
		s.evictOldest()
	}
}

func (s *localStore) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(entry.createdAt) >= entry.ttl {
		s.remove(key, entry)
		return nil, false
	}
	return entry.value, true
}

// deleteByTags removes every key indexed under the given tags and returns
// how many keys were dropped.
func (s *localStore) deleteByTags(tags []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		for key := range s.byTag[tag] {
			if entry, ok := s.entries[key]; ok {
				s.remove(key, entry)
				removed++
			}
		}
		delete(s.byTag, tag)
	}
	return removed
}

func (s *localStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// remove and unindex assume the lock is held.

func (s *localStore) remove(key string, entry localEntry) {
	delete(s.entries, key)
	s.unindex(key, entry.tags)
}

func (s *localStore) unindex(key string, tags []string) {
	for _, tag := range tags {
		if keys, ok := s.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, tag)
			}
		}
	}
}

// evictOldest trims the store down to the target size, dropping entries in
// insertion-time order. Approximate LRU is enough here.
func (s *localStore) evictOldest() {
	type aged struct {
		key string
		at  time.Time
	}
	all := make([]aged, 0, len(s.entries))
	for key, entry := range s.entries {
		all = append(all, aged{key: key, at: entry.createdAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	for _, candidate := range all {
		if len(s.entries) <= s.target {
			break
		}
		if entry, ok := s.entries[candidate.key]; ok {
			s.remove(candidate.key, entry)
		}
	}
}
