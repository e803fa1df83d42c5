// Package authz resolves boolean permission grants for principals. The
// resolution order is fixed: superuser role, then the principal's group
// permission row, then the department default table. Any store failure along
// the way resolves to deny.
package authz

import "context"

// Principal is the minimal identity slice the resolver needs.
type Principal struct {
	ID         int64
	Role       string
	Department string
	GroupID    *int64
}

// RoleAdmin marks the explicit superuser role. It is the only fail-open case
// in the resolver.
const RoleAdmin = "admin"

// GroupPermission maps a group to one permission name.
type GroupPermission struct {
	GroupID        int64
	PermissionName string
	Value          bool
}

// Store provides the identity and permission rows the resolver reads.
type Store interface {
	// Principal returns the principal's role, department and group.
	Principal(ctx context.Context, id int64) (Principal, error)
	// GroupPermission looks up a configured grant; found is false when the
	// group has no row for the permission.
	GroupPermission(ctx context.Context, groupID int64, permission string) (value bool, found bool, err error)
}
