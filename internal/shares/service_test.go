package shares

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

type shareKey struct {
	recordID  int64
	granteeID int64
}

type mockRepo struct {
	shares    map[shareKey]Share
	ownership map[int64]Ownership
	nextID    int64
	upsertErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{shares: map[shareKey]Share{}, ownership: map[int64]Ownership{}}
}

func (m *mockRepo) Upsert(_ context.Context, share Share) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	key := shareKey{share.RecordID, share.GranteeID}
	if existing, ok := m.shares[key]; ok {
		existing.Level = share.Level
		existing.GrantedBy = share.GrantedBy
		m.shares[key] = existing
		return nil
	}
	m.nextID++
	share.ID = m.nextID
	m.shares[key] = share
	return nil
}

func (m *mockRepo) Delete(_ context.Context, recordID, granteeID int64) (bool, error) {
	key := shareKey{recordID, granteeID}
	if _, ok := m.shares[key]; !ok {
		return false, nil
	}
	delete(m.shares, key)
	return true, nil
}

func (m *mockRepo) List(_ context.Context, recordID int64, cursor *int64, limit int) ([]ShareEntry, error) {
	var out []ShareEntry
	for id := m.nextID; id >= 1 && len(out) < limit+1; id-- {
		for key, sh := range m.shares {
			if key.recordID != recordID || sh.ID != id {
				continue
			}
			if cursor != nil && sh.ID >= *cursor {
				continue
			}
			out = append(out, ShareEntry{ID: sh.ID, GranteeID: sh.GranteeID, Level: sh.Level})
		}
	}
	return out, nil
}

func (m *mockRepo) Exists(_ context.Context, recordID, granteeID int64) (bool, error) {
	_, ok := m.shares[shareKey{recordID, granteeID}]
	return ok, nil
}

func (m *mockRepo) RecordIDsForGrantee(_ context.Context, granteeID int64) ([]int64, error) {
	var ids []int64
	for key := range m.shares {
		if key.granteeID == granteeID {
			ids = append(ids, key.recordID)
		}
	}
	return ids, nil
}

func (m *mockRepo) Ownership(_ context.Context, recordID int64) (Ownership, error) {
	own, ok := m.ownership[recordID]
	if !ok {
		return Ownership{}, fmt.Errorf("record %d: %w", recordID, shared.ErrNotFound)
	}
	return own, nil
}

type stubResolver struct {
	grants map[int64][]string
}

func (s stubResolver) HasPermission(_ context.Context, principalID int64, permission string) bool {
	for _, perm := range s.grants[principalID] {
		if perm == permission {
			return true
		}
	}
	return false
}

type noopInvalidator struct{ calls int }

func (n *noopInvalidator) InvalidateByTags(_ context.Context, _ ...string) int {
	n.calls++
	return 0
}

func newTestService(repo *mockRepo, resolver stubResolver) (*Service, *noopInvalidator) {
	inv := &noopInvalidator{}
	svc := NewService(repo, resolver, inv, nil, slog.New(slog.DiscardHandler))
	return svc, inv
}

func TestShareIdempotentUpsert(t *testing.T) {
	repo := newMockRepo()
	repo.ownership[10] = Ownership{OwnerID: 1}
	svc, inv := newTestService(repo, stubResolver{})

	require.NoError(t, svc.Share(context.Background(), 10, 1, 2, LevelView))
	require.NoError(t, svc.Share(context.Background(), 10, 1, 2, LevelEdit))

	require.Len(t, repo.shares, 1)
	got := repo.shares[shareKey{10, 2}]
	require.Equal(t, LevelEdit, got.Level, "repeat grant replaces the level")
	require.Equal(t, int64(1), got.ID, "repeat grant keeps the original row")
	require.Equal(t, 2, inv.calls)
}

func TestShareRejectsUnknownLevel(t *testing.T) {
	repo := newMockRepo()
	repo.ownership[10] = Ownership{OwnerID: 1}
	svc, _ := newTestService(repo, stubResolver{})

	err := svc.Share(context.Background(), 10, 1, 2, "owner")
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.shares)
}

func TestShareRequiresGranterAccess(t *testing.T) {
	repo := newMockRepo()
	repo.ownership[10] = Ownership{OwnerID: 1}
	svc, _ := newTestService(repo, stubResolver{})

	err := svc.Share(context.Background(), 10, 5, 2, LevelView)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestShareMissingRecord(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, stubResolver{})

	err := svc.Share(context.Background(), 99, 1, 2, LevelView)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestShareSurfacesContention(t *testing.T) {
	repo := newMockRepo()
	repo.ownership[10] = Ownership{OwnerID: 1}
	repo.upsertErr = fmt.Errorf("tx retries exhausted: %w", shared.ErrContention)
	svc, inv := newTestService(repo, stubResolver{})

	err := svc.Share(context.Background(), 10, 1, 2, LevelView)
	require.ErrorIs(t, err, shared.ErrContention)
	require.Zero(t, inv.calls, "no invalidation when the write failed")
}

func TestCanAccessBranches(t *testing.T) {
	assignee := int64(3)
	repo := newMockRepo()
	repo.ownership[10] = Ownership{OwnerID: 1, AssignedID: &assignee}
	repo.shares[shareKey{10, 4}] = Share{ID: 1, RecordID: 10, GranteeID: 4, Level: LevelView}
	resolver := stubResolver{grants: map[int64][]string{
		7: {shared.PermViewAllRNCs},
		8: {shared.PermAdminAccess},
	}}
	svc, _ := newTestService(repo, resolver)

	cases := []struct {
		name      string
		principal int64
		want      bool
	}{
		{"owner", 1, true},
		{"assignee", 3, true},
		{"grantee", 4, true},
		{"view all permission", 7, true},
		{"admin access permission", 8, true},
		{"unrelated user", 9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.CanAccess(context.Background(), tc.principal, 10)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCanAccessMissingRecord(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, stubResolver{})

	ok, err := svc.CanAccess(context.Background(), 1, 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.False(t, ok)
}

func TestRevoke(t *testing.T) {
	repo := newMockRepo()
	repo.ownership[10] = Ownership{OwnerID: 1}
	repo.shares[shareKey{10, 2}] = Share{ID: 1, RecordID: 10, GranteeID: 2, Level: LevelView}
	svc, inv := newTestService(repo, stubResolver{})

	require.NoError(t, svc.Revoke(context.Background(), 10, 1, 2))
	require.Empty(t, repo.shares)
	require.Equal(t, 1, inv.calls)

	err := svc.Revoke(context.Background(), 10, 1, 2)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListSharesPagination(t *testing.T) {
	repo := newMockRepo()
	repo.ownership[10] = Ownership{OwnerID: 1}
	svc, _ := newTestService(repo, stubResolver{})
	for grantee := int64(2); grantee <= 26; grantee++ {
		require.NoError(t, svc.Share(context.Background(), 10, 1, grantee, LevelView))
	}

	first, err := svc.ListShares(context.Background(), 1, 10, "", "10")
	require.NoError(t, err)
	require.Len(t, first.Items, 10)
	require.True(t, first.HasMore)
	require.NotNil(t, first.NextCursor)

	seen := map[int64]struct{}{}
	for _, e := range first.Items {
		seen[e.ID] = struct{}{}
	}
	cursor := first.NextCursor
	for cursor != nil {
		page, err := svc.ListShares(context.Background(), 1, 10, fmt.Sprint(*cursor), "10")
		require.NoError(t, err)
		for _, e := range page.Items {
			_, dup := seen[e.ID]
			require.False(t, dup, "no id appears twice across pages")
			seen[e.ID] = struct{}{}
		}
		cursor = page.NextCursor
	}
	require.Len(t, seen, 25)

	_, err = svc.ListShares(context.Background(), 9, 10, "", "")
	require.ErrorIs(t, err, shared.ErrForbidden)
}
