// Package shares stores explicit per-record grants to specific principals
// and answers the per-record access predicate reused by every view, edit,
// reply and delete authorization check.
package shares

import "time"

// Permission levels a share can carry.
const (
	LevelView = "view"
	LevelEdit = "edit"
)

// ValidLevel reports whether level is part of the closed set.
func ValidLevel(level string) bool {
	return level == LevelView || level == LevelEdit
}

// Share is an explicit grant of a record to a principal. At most one active
// share exists per (record, grantee); re-sharing upserts.
type Share struct {
	ID        int64
	RecordID  int64
	GrantedBy int64
	GranteeID int64
	Level     string
	CreatedAt time.Time
}

// ShareEntry is one row of a share listing, joined with the grantee account.
type ShareEntry struct {
	ID        int64     `json:"id"`
	GranteeID int64     `json:"grantee_id"`
	Level     string    `json:"level"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Ownership captures who holds a record directly.
type Ownership struct {
	OwnerID    int64
	AssignedID *int64
}
