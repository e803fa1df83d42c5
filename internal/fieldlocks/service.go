package fieldlocks

import (
	"context"
	"fmt"
	"sort"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// RepositoryPort defines data access methods for field locks.
type RepositoryPort interface {
	LockedFields(ctx context.Context, groupID int64) ([]string, error)
	ListLocks(ctx context.Context, groupID int64) ([]Lock, error)
	UpsertLocks(ctx context.Context, groupID int64, locks map[string]bool) error
	DeleteLocks(ctx context.Context, groupID int64) (int64, error)
}

// Service applies the field lock policy.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// LockedFields returns the set of fields locked for a group. A field absent
// from configuration defaults to unlocked; group 0 (ungrouped principals)
// has no locks.
func (s *Service) LockedFields(ctx context.Context, groupID int64) (map[string]struct{}, error) {
	locked := make(map[string]struct{})
	if groupID == 0 {
		return locked, nil
	}
	names, err := s.repo.LockedFields(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		locked[name] = struct{}{}
	}
	return locked, nil
}

// ListLocks returns the configured rows for the admin screen.
func (s *Service) ListLocks(ctx context.Context, groupID int64) ([]Lock, error) {
	return s.repo.ListLocks(ctx, groupID)
}

// UpdateLocks upserts the given per-field lock flags, skipping unknown field
// names, and returns how many fields were written.
func (s *Service) UpdateLocks(ctx context.Context, groupID int64, locks map[string]bool) (int, error) {
	valid := make(map[string]bool, len(locks))
	for field, locked := range locks {
		if KnownField(field) {
			valid[field] = locked
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	if err := s.repo.UpsertLocks(ctx, groupID, valid); err != nil {
		return 0, err
	}
	return len(valid), nil
}

// Reset deletes all lock rows for the group, leaving every field unlocked.
func (s *Service) Reset(ctx context.Context, groupID int64) (int64, error) {
	return s.repo.DeleteLocks(ctx, groupID)
}

// ValidateSubmission rejects a form when any locked field carries a
// non-empty value, or when it references a field outside the registry. The
// whole submission fails; there is no partial acceptance. Rejected names are
// returned sorted for deterministic error messages.
func ValidateSubmission(form map[string]string, locked map[string]struct{}) error {
	var rejected []string
	for field, value := range form {
		if !KnownField(field) {
			rejected = append(rejected, field)
			continue
		}
		if _, isLocked := locked[field]; isLocked && value != "" {
			rejected = append(rejected, field)
		}
	}
	if len(rejected) == 0 {
		return nil
	}
	sort.Strings(rejected)
	return fmt.Errorf("%w: fields not permitted: %v", shared.ErrValidation, rejected)
}
