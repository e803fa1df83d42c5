package authz

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Resolver decides permission grants. It is the single entry point for every
// permission check in the application.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// HasPermission resolves a grant for the principal, first match wins:
// admin role, group permission row, department default. Store errors deny
// and are logged; an unknown principal denies silently.
func (r *Resolver) HasPermission(ctx context.Context, principalID int64, permission string) bool {
	principal, err := r.store.Principal(ctx, principalID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			r.logger.Error("authz: principal lookup failed, denying",
				slog.Int64("principal_id", principalID),
				slog.String("permission", permission),
				slog.Any("error", err))
		}
		return false
	}
	if principal.Role == RoleAdmin {
		return true
	}
	if principal.GroupID != nil {
		value, found, err := r.store.GroupPermission(ctx, *principal.GroupID, permission)
		if err != nil {
			r.logger.Error("authz: group permission lookup failed, denying",
				slog.Int64("principal_id", principalID),
				slog.Int64("group_id", *principal.GroupID),
				slog.String("permission", permission),
				slog.Any("error", err))
			return false
		}
		if found && value {
			return true
		}
	}
	return departmentDefault(principal.Department, permission)
}

// PrincipalGroup returns the principal's group id, or 0 when the principal
// is unknown or ungrouped. Used by the field-lock policy.
func (r *Resolver) PrincipalGroup(ctx context.Context, principalID int64) int64 {
	principal, err := r.store.Principal(ctx, principalID)
	if err != nil || principal.GroupID == nil {
		return 0
	}
	return *principal.GroupID
}
