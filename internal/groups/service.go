package groups

import (
	"context"
	"fmt"

	"github.com/ncrtrack/ncrtrack/internal/cache"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// RepositoryPort defines data access methods for groups.
type RepositoryPort interface {
	List(ctx context.Context) ([]Group, error)
	Get(ctx context.Context, id int64) (Group, error)
	Grants(ctx context.Context, groupID int64) ([]Grant, error)
	UpsertGrant(ctx context.Context, grant Grant) error
	DeleteGrant(ctx context.Context, groupID int64, permission string) (bool, error)
}

// Invalidator sweeps cached query results whose visibility a grant change
// may alter.
type Invalidator interface {
	InvalidateByTags(ctx context.Context, tags ...string) int
}

// Service manages group permission configuration.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
}

// NewService builds Service instance. invalidator may be nil.
func NewService(repo RepositoryPort, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// List returns all groups.
func (s *Service) List(ctx context.Context) ([]Group, error) {
	return s.repo.List(ctx)
}

// Grants returns a group's explicit rows, verifying the group exists.
func (s *Service) Grants(ctx context.Context, groupID int64) ([]Grant, error) {
	if _, err := s.repo.Get(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.Grants(ctx, groupID)
}

// SetGrant writes one explicit permission row. Permission names outside the
// closed vocabulary are rejected, never stored.
func (s *Service) SetGrant(ctx context.Context, groupID int64, permission string, value bool) error {
	if !shared.KnownPermission(permission) {
		return fmt.Errorf("%w: unknown permission %q", shared.ErrValidation, permission)
	}
	if _, err := s.repo.Get(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.UpsertGrant(ctx, Grant{GroupID: groupID, Permission: permission, Value: value}); err != nil {
		return err
	}
	s.sweep(ctx)
	return nil
}

// ClearGrant removes an explicit row so the department default applies again.
func (s *Service) ClearGrant(ctx context.Context, groupID int64, permission string) error {
	if !shared.KnownPermission(permission) {
		return fmt.Errorf("%w: unknown permission %q", shared.ErrValidation, permission)
	}
	removed, err := s.repo.DeleteGrant(ctx, groupID, permission)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: no explicit grant for %q", shared.ErrNotFound, permission)
	}
	s.sweep(ctx)
	return nil
}

// sweep drops cached listings; which records a group's members may see can
// change with any grant.
func (s *Service) sweep(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateByTags(ctx, cache.TagList)
	}
}
