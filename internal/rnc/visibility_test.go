package rnc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildVisibilityQueryScoped(t *testing.T) {
	scope := Scope{PrincipalID: 7, SharedIDs: []int64{3, 9}}
	query, args, err := BuildVisibilityQuery(scope, TabActive, Filters{}, nil, 20)
	require.NoError(t, err)

	require.Contains(t, query, "NOT is_deleted")
	require.Contains(t, query, "finalized_at IS NULL")
	require.Contains(t, query, "(owner_id = $1 OR assigned_user_id = $1 OR id = ANY($2))")
	require.Contains(t, query, "ORDER BY id DESC LIMIT $3")
	require.Equal(t, []any{int64(7), []int64{3, 9}, 21}, args)
}

func TestBuildVisibilityQueryNoShares(t *testing.T) {
	query, args, err := BuildVisibilityQuery(Scope{PrincipalID: 7}, TabActive, Filters{}, nil, 20)
	require.NoError(t, err)
	require.NotContains(t, query, "ANY", "no share clause when nothing is shared")
	require.Equal(t, []any{int64(7), 21}, args)
}

func TestBuildVisibilityQueryBroad(t *testing.T) {
	query, args, err := BuildVisibilityQuery(Scope{PrincipalID: 7, Broad: true}, TabFinalized, Filters{}, nil, 10)
	require.NoError(t, err)
	require.NotContains(t, query, "owner_id", "broad scope drops per-record predicates")
	require.Contains(t, query, "finalized_at IS NOT NULL")
	require.Equal(t, []any{11}, args)
}

func TestBuildVisibilityQueryDeletedTab(t *testing.T) {
	query, _, err := BuildVisibilityQuery(Scope{Broad: true}, TabDeleted, Filters{}, nil, 10)
	require.NoError(t, err)
	require.Contains(t, query, "WHERE is_deleted")
	require.NotContains(t, query, "finalized_at")
}

func TestBuildVisibilityQueryFiltersAndCursor(t *testing.T) {
	cursor := int64(91)
	filters := Filters{Status: StatusOpen, Department: "quality", Search: "weld"}
	query, args, err := BuildVisibilityQuery(Scope{PrincipalID: 7}, TabActive, filters, &cursor, 10)
	require.NoError(t, err)

	require.Contains(t, query, "status = $2")
	require.Contains(t, query, "department = $3")
	require.Contains(t, query, "(title ILIKE $4 OR rnc_number ILIKE $4)")
	require.Contains(t, query, "id < $5")
	require.Equal(t, []any{int64(7), StatusOpen, "quality", "%weld%", int64(91), 11}, args)
}

func TestBuildVisibilityQueryUnknownTab(t *testing.T) {
	_, _, err := BuildVisibilityQuery(Scope{Broad: true}, "archived", Filters{}, nil, 10)
	require.Error(t, err)
}

func TestFiltersMap(t *testing.T) {
	require.Empty(t, Filters{}.Map())
	m := Filters{Status: StatusOpen, Search: "pump"}.Map()
	require.Equal(t, map[string]string{"status": StatusOpen, "q": "pump"}, m)
}
