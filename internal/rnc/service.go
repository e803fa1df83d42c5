package rnc

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ncrtrack/ncrtrack/internal/cache"
	"github.com/ncrtrack/ncrtrack/internal/fieldlocks"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// RepositoryPort defines data access methods for records.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Record, error)
	NextSequence(ctx context.Context) (int64, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, rec Record) error
	SetDeleted(ctx context.Context, id int64, deleted bool) error
	Finalize(ctx context.Context, id int64) error
	ListVisible(ctx context.Context, query string, args []any) ([]Record, error)
}

// AccessChecker answers the per-record access predicate and enumerates
// shared record ids. Implemented by the shares service.
type AccessChecker interface {
	CanAccess(ctx context.Context, principalID, recordID int64) (bool, error)
	RecordIDsForGrantee(ctx context.Context, granteeID int64) ([]int64, error)
}

// PermissionResolver resolves permission grants for principals.
type PermissionResolver interface {
	HasPermission(ctx context.Context, principalID int64, permission string) bool
	PrincipalGroup(ctx context.Context, principalID int64) int64
}

// LockPolicy returns the fields locked for a group.
type LockPolicy interface {
	LockedFields(ctx context.Context, groupID int64) (map[string]struct{}, error)
}

// Notifier is told about lifecycle events worth an email.
type Notifier interface {
	RecordFinalized(ctx context.Context, rec Record)
}

// Auditor records mutating operations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListResult is one cursor page of records.
type ListResult struct {
	Items      []Record `json:"items"`
	HasMore    bool     `json:"has_more"`
	NextCursor *int64   `json:"next_cursor"`
}

// Config tunes the listing cache.
type Config struct {
	ListTTL   time.Duration
	RecordTTL time.Duration
}

// Service orchestrates record lifecycle and the cached listing path.
type Service struct {
	repo     RepositoryPort
	access   AccessChecker
	resolver PermissionResolver
	locks    LockPolicy
	cache    *cache.TaggedCache
	audit    Auditor
	notifier Notifier
	logger   *slog.Logger
	cfg      Config
	group    singleflight.Group
	now      func() time.Time
}

// NewService builds Service instance. audit and notifier may be nil.
func NewService(repo RepositoryPort, access AccessChecker, resolver PermissionResolver,
	locks LockPolicy, tagged *cache.TaggedCache, audit Auditor, notifier Notifier,
	logger *slog.Logger, cfg Config) *Service {
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 2 * time.Minute
	}
	if cfg.RecordTTL <= 0 {
		cfg.RecordTTL = 5 * time.Minute
	}
	return &Service{
		repo:     repo,
		access:   access,
		resolver: resolver,
		locks:    locks,
		cache:    tagged,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// broadScope reports whether the principal sees every record without
// per-record scoping.
func (s *Service) broadScope(ctx context.Context, principalID int64) bool {
	return s.resolver.HasPermission(ctx, principalID, shared.PermViewAllRNCs) ||
		s.resolver.HasPermission(ctx, principalID, shared.PermAdminAccess)
}

func (s *Service) tabAllowed(ctx context.Context, principalID int64, tab string) bool {
	switch tab {
	case TabFinalized:
		return s.resolver.HasPermission(ctx, principalID, shared.PermViewFinalizedRNCs)
	case TabDeleted:
		return s.resolver.HasPermission(ctx, principalID, shared.PermDeleteRNCs)
	default:
		return s.resolver.HasPermission(ctx, principalID, shared.PermViewOwnRNCs)
	}
}

// List returns one page of records visible to the principal on the given
// tab. Results are cached per principal, tab, page and filter set; identical
// concurrent misses collapse into a single database query.
func (s *Service) List(ctx context.Context, principalID int64, tab, rawCursor, rawLimit string, filters Filters) (ListResult, error) {
	if tab == "" {
		tab = TabActive
	}
	if !ValidTab(tab) {
		return ListResult{}, fmt.Errorf("%w: unknown tab %q", shared.ErrValidation, tab)
	}
	if !s.tabAllowed(ctx, principalID, tab) {
		return ListResult{}, shared.ErrForbidden
	}
	cursor, limit := shared.ParseCursorLimit(rawCursor, rawLimit, shared.DefaultPageLimit, shared.MaxPageLimit)

	key := cache.ListKey(principalID, tab, cursor, limit, filters.Map())
	var cached ListResult
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		scope := Scope{PrincipalID: principalID, Broad: s.broadScope(ctx, principalID)}
		if !scope.Broad {
			ids, err := s.access.RecordIDsForGrantee(ctx, principalID)
			if err != nil {
				return ListResult{}, err
			}
			scope.SharedIDs = ids
		}
		query, args, err := BuildVisibilityQuery(scope, tab, filters, cursor, limit)
		if err != nil {
			return ListResult{}, err
		}
		rows, err := s.repo.ListVisible(ctx, query, args)
		if err != nil {
			return ListResult{}, err
		}
		page, hasMore, next := shared.ComputeWindow(rows, limit, func(r Record) int64 { return r.ID })
		if page == nil {
			page = []Record{}
		}
		res := ListResult{Items: page, HasMore: hasMore, NextCursor: next}
		s.cache.SetJSON(ctx, key, res, s.cfg.ListTTL, []string{cache.TagList})
		return res, nil
	})
	if err != nil {
		return ListResult{}, err
	}
	return result.(ListResult), nil
}

// Get returns one record the principal may access.
func (s *Service) Get(ctx context.Context, principalID, id int64) (Record, error) {
	ok, err := s.access.CanAccess(ctx, principalID, id)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, shared.ErrForbidden
	}
	key := cache.RecordKey(id)
	var rec Record
	if s.cache.GetJSON(ctx, key, &rec) {
		return rec, nil
	}
	rec, err = s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	s.cache.SetJSON(ctx, key, rec, s.cfg.RecordTTL, []string{cache.TagRecord(id)})
	return rec, nil
}

// Create opens a new record from a form submission. Locked fields reject the
// whole submission; nothing is stored partially.
func (s *Service) Create(ctx context.Context, principalID int64, form map[string]string) (Record, error) {
	if !s.resolver.HasPermission(ctx, principalID, shared.PermCreateRNC) {
		return Record{}, shared.ErrForbidden
	}
	if err := s.validateForm(ctx, principalID, form); err != nil {
		return Record{}, err
	}
	rec := Record{
		Status:   StatusOpen,
		Priority: PriorityNormal,
		OwnerID:  principalID,
		Details:  map[string]string{},
	}
	if err := s.applyForm(ctx, principalID, &rec, form, true); err != nil {
		return Record{}, err
	}
	if rec.Title == "" {
		return Record{}, fmt.Errorf("%w: title is required", shared.ErrValidation)
	}
	if rec.RNCNumber == "" {
		seq, err := s.repo.NextSequence(ctx)
		if err != nil {
			return Record{}, err
		}
		rec.RNCNumber = fmt.Sprintf("RNC-%d-%05d", s.now().Year(), seq)
	}
	rec, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.cache.InvalidateByTags(ctx, cache.TagList)
	s.auditEvent(ctx, principalID, "rnc.create", rec.ID, map[string]any{"rnc_number": rec.RNCNumber})
	return rec, nil
}

// Update applies a form submission to an existing active record.
func (s *Service) Update(ctx context.Context, principalID, id int64, form map[string]string) (Record, error) {
	ok, err := s.access.CanAccess(ctx, principalID, id)
	if err != nil {
		return Record{}, err
	}
	if !ok || !s.resolver.HasPermission(ctx, principalID, shared.PermEditRNCs) {
		return Record{}, shared.ErrForbidden
	}
	if err := s.validateForm(ctx, principalID, form); err != nil {
		return Record{}, err
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.IsDeleted {
		return Record{}, fmt.Errorf("%w: record %d is deleted", shared.ErrValidation, id)
	}
	if err := s.applyForm(ctx, principalID, &rec, form, false); err != nil {
		return Record{}, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	s.cache.InvalidateByTags(ctx, cache.TagList, cache.TagRecord(id))
	s.auditEvent(ctx, principalID, "rnc.update", id, nil)
	return rec, nil
}

// SoftDelete moves a record to the deleted tab, starting the retention
// countdown.
func (s *Service) SoftDelete(ctx context.Context, principalID, id int64) error {
	return s.transition(ctx, principalID, id, shared.PermDeleteRNCs, "rnc.delete", func(ctx context.Context) error {
		return s.repo.SetDeleted(ctx, id, true)
	})
}

// Restore moves a deleted record back to its previous tab.
func (s *Service) Restore(ctx context.Context, principalID, id int64) error {
	return s.transition(ctx, principalID, id, shared.PermDeleteRNCs, "rnc.restore", func(ctx context.Context) error {
		return s.repo.SetDeleted(ctx, id, false)
	})
}

// Finalize closes a record and moves it to the finalized tab.
func (s *Service) Finalize(ctx context.Context, principalID, id int64) error {
	err := s.transition(ctx, principalID, id, shared.PermFinalizeRNC, "rnc.finalize", func(ctx context.Context) error {
		return s.repo.Finalize(ctx, id)
	})
	if err != nil {
		return err
	}
	if s.notifier != nil {
		if rec, err := s.repo.Get(ctx, id); err == nil {
			s.notifier.RecordFinalized(ctx, rec)
		}
	}
	return nil
}

func (s *Service) transition(ctx context.Context, principalID, id int64, perm, action string, op func(context.Context) error) error {
	ok, err := s.access.CanAccess(ctx, principalID, id)
	if err != nil {
		return err
	}
	if !ok || !s.resolver.HasPermission(ctx, principalID, perm) {
		return shared.ErrForbidden
	}
	if err := op(ctx); err != nil {
		return err
	}
	s.cache.InvalidateByTags(ctx, cache.TagList, cache.TagRecord(id))
	s.auditEvent(ctx, principalID, action, id, nil)
	return nil
}

func (s *Service) validateForm(ctx context.Context, principalID int64, form map[string]string) error {
	locked, err := s.locks.LockedFields(ctx, s.resolver.PrincipalGroup(ctx, principalID))
	if err != nil {
		return err
	}
	return fieldlocks.ValidateSubmission(form, locked)
}

// applyForm maps form fields onto the record. The typed columns are handled
// explicitly; everything else lands in Details. The report number is only
// writable at creation, and reassignment needs its own permission.
func (s *Service) applyForm(ctx context.Context, principalID int64, rec *Record, form map[string]string, creating bool) error {
	if rec.Details == nil {
		rec.Details = map[string]string{}
	}
	for field, value := range form {
		switch field {
		case "rnc_number":
			if creating {
				rec.RNCNumber = value
			}
		case "title":
			rec.Title = value
		case "status":
			if !ValidStatus(value) {
				return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, value)
			}
			rec.Status = value
		case "priority":
			if !ValidPriority(value) {
				return fmt.Errorf("%w: unknown priority %q", shared.ErrValidation, value)
			}
			rec.Priority = value
		case "sector":
			rec.Department = value
		case "equipment":
			rec.Equipment = value
		case "client":
			rec.Client = value
		case "description":
			rec.Description = value
		case "assigned_user_id":
			if value == "" {
				if rec.AssignedUserID == nil {
					continue
				}
				if !s.resolver.HasPermission(ctx, principalID, shared.PermAssignRNC) {
					return shared.ErrForbidden
				}
				rec.AssignedUserID = nil
				continue
			}
			if !s.resolver.HasPermission(ctx, principalID, shared.PermAssignRNC) {
				return shared.ErrForbidden
			}
			assignee, err := strconv.ParseInt(value, 10, 64)
			if err != nil || assignee <= 0 {
				return fmt.Errorf("%w: assigned_user_id must be a user id", shared.ErrValidation)
			}
			rec.AssignedUserID = &assignee
		default:
			rec.Details[field] = value
		}
	}
	return nil
}

func (s *Service) auditEvent(ctx context.Context, actorID int64, action string, recordID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "rnc",
		EntityID: strconv.FormatInt(recordID, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit write failed", slog.String("action", action), slog.Any("error", err))
	}
}
