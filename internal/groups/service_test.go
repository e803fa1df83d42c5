package groups

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

type grantKey struct {
	groupID    int64
	permission string
}

type mockRepo struct {
	groups map[int64]Group
	grants map[grantKey]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{groups: map[int64]Group{}, grants: map[grantKey]bool{}}
}

func (m *mockRepo) List(context.Context) ([]Group, error) {
	var out []Group
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return Group{}, shared.ErrNotFound
	}
	return g, nil
}

func (m *mockRepo) Grants(_ context.Context, groupID int64) ([]Grant, error) {
	var out []Grant
	for key, value := range m.grants {
		if key.groupID == groupID {
			out = append(out, Grant{GroupID: groupID, Permission: key.permission, Value: value})
		}
	}
	return out, nil
}

func (m *mockRepo) UpsertGrant(_ context.Context, grant Grant) error {
	m.grants[grantKey{grant.GroupID, grant.Permission}] = grant.Value
	return nil
}

func (m *mockRepo) DeleteGrant(_ context.Context, groupID int64, permission string) (bool, error) {
	key := grantKey{groupID, permission}
	if _, ok := m.grants[key]; !ok {
		return false, nil
	}
	delete(m.grants, key)
	return true, nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidateByTags(context.Context, ...string) int {
	m.calls++
	return 1
}

func TestSetGrant(t *testing.T) {
	repo := newMockRepo()
	repo.groups[1] = Group{ID: 1, Name: "inspection"}
	sweeper := &mockInvalidator{}
	svc := NewService(repo, sweeper)

	ctx := context.Background()
	require.NoError(t, svc.SetGrant(ctx, 1, shared.PermFinalizeRNC, true))
	require.True(t, repo.grants[grantKey{1, shared.PermFinalizeRNC}])
	require.Equal(t, 1, sweeper.calls, "grant change sweeps cached listings")

	// Re-granting flips the value in place.
	require.NoError(t, svc.SetGrant(ctx, 1, shared.PermFinalizeRNC, false))
	require.False(t, repo.grants[grantKey{1, shared.PermFinalizeRNC}])
	require.Len(t, repo.grants, 1)

	err := svc.SetGrant(ctx, 1, "launch_rockets", true)
	require.ErrorIs(t, err, shared.ErrValidation)

	err = svc.SetGrant(ctx, 99, shared.PermFinalizeRNC, true)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClearGrant(t *testing.T) {
	repo := newMockRepo()
	repo.groups[1] = Group{ID: 1, Name: "inspection"}
	repo.grants[grantKey{1, shared.PermDeleteRNCs}] = true
	svc := NewService(repo, nil)

	ctx := context.Background()
	require.NoError(t, svc.ClearGrant(ctx, 1, shared.PermDeleteRNCs))
	require.Empty(t, repo.grants)

	err := svc.ClearGrant(ctx, 1, shared.PermDeleteRNCs)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
