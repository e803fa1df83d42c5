package shared

import "strconv"

// Cursor pagination over a monotonically increasing integer key. Listings are
// ordered by id DESC and anchored by a strict `id < cursor`, so pages already
// issued stay stable while newer rows are inserted at the top of the feed.
// Callers fetch limit+1 rows and pass them to ComputeWindow.

const (
	// DefaultPageLimit applies when the client sends no limit.
	DefaultPageLimit = 20
	// MaxPageLimit caps the page size regardless of what the client asks for.
	MaxPageLimit = 100
)

// ParseCursorLimit normalises raw cursor/limit query values. An invalid or
// missing cursor means "first page" (nil). The limit is clamped into
// [1, maxLimit].
func ParseCursorLimit(rawCursor, rawLimit string, defaultLimit, maxLimit int) (*int64, int) {
	var cursor *int64
	if rawCursor != "" {
		if id, err := strconv.ParseInt(rawCursor, 10, 64); err == nil && id > 0 {
			cursor = &id
		}
	}
	limit := defaultLimit
	if rawLimit != "" {
		if n, err := strconv.Atoi(rawLimit); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return cursor, limit
}

// ComputeWindow trims an over-fetched result set down to one page. rows must
// hold at most limit+1 entries ordered by id DESC; id extracts the paging key
// from a row. The next cursor is the id of the last row of the trimmed page,
// or nil when the page is empty.
func ComputeWindow[T any](rows []T, limit int, id func(T) int64) ([]T, bool, *int64) {
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	if len(rows) == 0 {
		return rows, hasMore, nil
	}
	last := id(rows[len(rows)-1])
	return rows, hasMore, &last
}
