package users

import "time"

// Role values recognised on a user account.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a user account. Accounts are managed by the external
// identity subsystem; this application only reads them.
type User struct {
	ID         int64
	Email      string
	Name       string
	Role       string
	Department string
	GroupID    *int64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsAdmin reports whether the account carries the superuser role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
