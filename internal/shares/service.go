package shares

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ncrtrack/ncrtrack/internal/cache"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// RepositoryPort defines data access methods for shares.
type RepositoryPort interface {
	Upsert(ctx context.Context, share Share) error
	Delete(ctx context.Context, recordID, granteeID int64) (bool, error)
	List(ctx context.Context, recordID int64, cursor *int64, limit int) ([]ShareEntry, error)
	Exists(ctx context.Context, recordID, granteeID int64) (bool, error)
	RecordIDsForGrantee(ctx context.Context, granteeID int64) ([]int64, error)
	Ownership(ctx context.Context, recordID int64) (Ownership, error)
}

// PermissionResolver resolves permission grants for principals.
type PermissionResolver interface {
	HasPermission(ctx context.Context, principalID int64, permission string) bool
}

// Invalidator drops cache entries by tag after a successful mutation.
type Invalidator interface {
	InvalidateByTags(ctx context.Context, tags ...string) int
}

// Notifier is told about new shares, typically to enqueue an email.
type Notifier interface {
	ShareCreated(ctx context.Context, share Share)
}

// ListResult is one page of share entries.
type ListResult struct {
	Items      []ShareEntry `json:"items"`
	HasMore    bool         `json:"has_more"`
	NextCursor *int64       `json:"next_cursor"`
}

// Service orchestrates share grants.
type Service struct {
	repo     RepositoryPort
	resolver PermissionResolver
	invalid  Invalidator
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance. notifier may be nil.
func NewService(repo RepositoryPort, resolver PermissionResolver, invalid Invalidator, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, invalid: invalid, notifier: notifier, logger: logger}
}

// CanAccess reports whether the principal may see the record: owner,
// assignee, active share, or a broad view permission. This predicate is the
// single source of truth for per-record access.
func (s *Service) CanAccess(ctx context.Context, principalID, recordID int64) (bool, error) {
	ownership, err := s.repo.Ownership(ctx, recordID)
	if err != nil {
		return false, err
	}
	if ownership.OwnerID == principalID {
		return true, nil
	}
	if ownership.AssignedID != nil && *ownership.AssignedID == principalID {
		return true, nil
	}
	exists, err := s.repo.Exists(ctx, recordID, principalID)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	if s.resolver.HasPermission(ctx, principalID, shared.PermViewAllRNCs) ||
		s.resolver.HasPermission(ctx, principalID, shared.PermAdminAccess) {
		return true, nil
	}
	return false, nil
}

// Share grants a record to a principal, upserting the existing grant if one
// is already active. The granter must be able to access the record.
func (s *Service) Share(ctx context.Context, recordID, granterID, granteeID int64, level string) error {
	if !ValidLevel(level) {
		return fmt.Errorf("%w: unknown permission level %q", shared.ErrValidation, level)
	}
	ok, err := s.CanAccess(ctx, granterID, recordID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}

	share := Share{RecordID: recordID, GrantedBy: granterID, GranteeID: granteeID, Level: level}
	if err := s.repo.Upsert(ctx, share); err != nil {
		return err
	}
	s.invalid.InvalidateByTags(ctx, cache.TagList, cache.TagRecord(recordID))

	if s.notifier != nil {
		s.notifier.ShareCreated(ctx, share)
	}
	s.logger.Info("record shared",
		slog.Int64("record_id", recordID),
		slog.Int64("granter_id", granterID),
		slog.Int64("grantee_id", granteeID),
		slog.String("level", level))
	return nil
}

// Revoke removes an active share.
func (s *Service) Revoke(ctx context.Context, recordID, actorID, granteeID int64) error {
	ok, err := s.CanAccess(ctx, actorID, recordID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	removed, err := s.repo.Delete(ctx, recordID, granteeID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: share for grantee %d", shared.ErrNotFound, granteeID)
	}
	s.invalid.InvalidateByTags(ctx, cache.TagList, cache.TagRecord(recordID))
	return nil
}

// ListShares returns one cursor page of grants for a record.
func (s *Service) ListShares(ctx context.Context, actorID, recordID int64, rawCursor, rawLimit string) (ListResult, error) {
	ok, err := s.CanAccess(ctx, actorID, recordID)
	if err != nil {
		return ListResult{}, err
	}
	if !ok {
		return ListResult{}, shared.ErrForbidden
	}
	cursor, limit := shared.ParseCursorLimit(rawCursor, rawLimit, shared.DefaultPageLimit, shared.MaxPageLimit)
	rows, err := s.repo.List(ctx, recordID, cursor, limit)
	if err != nil {
		return ListResult{}, err
	}
	page, hasMore, next := shared.ComputeWindow(rows, limit, func(e ShareEntry) int64 { return e.ID })
	return ListResult{Items: page, HasMore: hasMore, NextCursor: next}, nil
}

// RecordIDsForGrantee exposes the shared record ids for the visibility
// query builder.
func (s *Service) RecordIDsForGrantee(ctx context.Context, granteeID int64) ([]int64, error) {
	return s.repo.RecordIDsForGrantee(ctx, granteeID)
}
