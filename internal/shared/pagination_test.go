package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCursorLimit(t *testing.T) {
	cursor, limit := ParseCursorLimit("", "", DefaultPageLimit, MaxPageLimit)
	assert.Nil(t, cursor)
	assert.Equal(t, DefaultPageLimit, limit)

	cursor, limit = ParseCursorLimit("91", "10", DefaultPageLimit, MaxPageLimit)
	require.NotNil(t, cursor)
	assert.Equal(t, int64(91), *cursor)
	assert.Equal(t, 10, limit)

	cursor, _ = ParseCursorLimit("not-a-number", "", DefaultPageLimit, MaxPageLimit)
	assert.Nil(t, cursor)

	cursor, _ = ParseCursorLimit("-5", "", DefaultPageLimit, MaxPageLimit)
	assert.Nil(t, cursor)

	_, limit = ParseCursorLimit("", "0", DefaultPageLimit, MaxPageLimit)
	assert.Equal(t, 1, limit)

	_, limit = ParseCursorLimit("", "9999", DefaultPageLimit, MaxPageLimit)
	assert.Equal(t, MaxPageLimit, limit)
}

func TestComputeWindow(t *testing.T) {
	ident := func(id int64) int64 { return id }

	// Over-fetched by one: trim and report more.
	rows := []int64{100, 99, 98, 97, 96, 95}
	page, hasMore, next := ComputeWindow(rows, 5, ident)
	assert.Len(t, page, 5)
	assert.True(t, hasMore)
	require.NotNil(t, next)
	assert.Equal(t, int64(96), *next)

	// Exactly limit rows: last page.
	page, hasMore, next = ComputeWindow([]int64{3, 2, 1}, 3, ident)
	assert.Len(t, page, 3)
	assert.False(t, hasMore)
	require.NotNil(t, next)
	assert.Equal(t, int64(1), *next)

	// Empty page.
	page, hasMore, next = ComputeWindow(nil, 3, ident)
	assert.Empty(t, page)
	assert.False(t, hasMore)
	assert.Nil(t, next)
}
