package rnc

import (
	"fmt"
	"strings"
)

// listProjection is the fixed column list every listing query selects.
// Changing it means changing scanListRow in the repository as well.
const listProjection = `id, rnc_number, title, status, priority, department,
	owner_id, assigned_user_id, is_deleted, deleted_at, finalized_at,
	created_at, updated_at`

// Scope describes whose records a listing may return.
type Scope struct {
	// PrincipalID anchors the owner/assignee predicates.
	PrincipalID int64
	// Broad disables per-record scoping entirely; the principal sees every
	// record in the tab.
	Broad bool
	// SharedIDs are record ids explicitly shared with the principal. Only
	// consulted when Broad is false.
	SharedIDs []int64
}

// Filters narrows a listing. Empty values mean "no filter".
type Filters struct {
	Status     string
	Department string
	Search     string
}

// Map returns the non-empty filters for cache keying.
func (f Filters) Map() map[string]string {
	m := map[string]string{}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.Department != "" {
		m["department"] = f.Department
	}
	if f.Search != "" {
		m["q"] = f.Search
	}
	return m
}

// BuildVisibilityQuery composes one SELECT enforcing tab membership, the
// principal's visibility scope, filters and cursor pagination. Authorization
// lives in the WHERE clause; there is no post-filtering of rows. The query
// over-fetches limit+1 rows so the caller can detect a further page.
func BuildVisibilityQuery(scope Scope, tab string, filters Filters, cursor *int64, limit int) (string, []any, error) {
	if !ValidTab(tab) {
		return "", nil, fmt.Errorf("unknown tab %q", tab)
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch tab {
	case TabActive:
		where = append(where, "NOT is_deleted", "finalized_at IS NULL")
	case TabFinalized:
		where = append(where, "NOT is_deleted", "finalized_at IS NOT NULL")
	case TabDeleted:
		where = append(where, "is_deleted")
	}

	if !scope.Broad {
		principal := arg(scope.PrincipalID)
		clause := fmt.Sprintf("(owner_id = %s OR assigned_user_id = %s", principal, principal)
		if len(scope.SharedIDs) > 0 {
			clause += fmt.Sprintf(" OR id = ANY(%s)", arg(scope.SharedIDs))
		}
		clause += ")"
		where = append(where, clause)
	}

	if filters.Status != "" {
		where = append(where, "status = "+arg(filters.Status))
	}
	if filters.Department != "" {
		where = append(where, "department = "+arg(filters.Department))
	}
	if filters.Search != "" {
		pattern := arg("%" + filters.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR rnc_number ILIKE %s)", pattern, pattern))
	}

	if cursor != nil {
		where = append(where, "id < "+arg(*cursor))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM rncs WHERE %s ORDER BY id DESC LIMIT %s",
		listProjection, strings.Join(where, " AND "), arg(limit+1))
	return query, args, nil
}
