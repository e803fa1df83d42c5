// Package groups manages permission groups and their explicit grants. A
// group row overrides the department default for its members; absence of a
// row falls through to the default.
package groups

import "time"

// Group is a named set of principals sharing explicit grants.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Grant is one explicit permission row for a group. Value false is an
// explicit denial record; it still falls through to the department default.
type Grant struct {
	GroupID    int64  `json:"group_id"`
	Permission string `json:"permission"`
	Value      bool   `json:"value"`
}
