package authz

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

type mockStore struct {
	principals   map[int64]Principal
	grants       map[int64]map[string]bool
	principalErr error
	grantErr     error
}

func (m *mockStore) Principal(ctx context.Context, id int64) (Principal, error) {
	if m.principalErr != nil {
		return Principal{}, m.principalErr
	}
	p, ok := m.principals[id]
	if !ok {
		return Principal{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) GroupPermission(ctx context.Context, groupID int64, permission string) (bool, bool, error) {
	if m.grantErr != nil {
		return false, false, m.grantErr
	}
	perms, ok := m.grants[groupID]
	if !ok {
		return false, false, nil
	}
	value, found := perms[permission]
	return value, found, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func groupID(id int64) *int64 { return &id }

func TestAdminHasEveryPermission(t *testing.T) {
	store := &mockStore{principals: map[int64]Principal{
		1: {ID: 1, Role: RoleAdmin, Department: "Production"},
	}}
	resolver := NewResolver(store, testLogger())

	for _, perm := range shared.AllPermissions() {
		assert.True(t, resolver.HasPermission(context.Background(), 1, perm), perm)
	}
}

func TestGroupGrantOverridesDepartmentDefault(t *testing.T) {
	store := &mockStore{
		principals: map[int64]Principal{
			2: {ID: 2, Role: "user", Department: "Production", GroupID: groupID(7)},
		},
		grants: map[int64]map[string]bool{
			7: {shared.PermViewAllRNCs: true},
		},
	}
	resolver := NewResolver(store, testLogger())

	// Production has no department-wide view, but the group grant allows it.
	assert.True(t, resolver.HasPermission(context.Background(), 2, shared.PermViewAllRNCs))
	// A false row does not grant and falls through to the department table.
	store.grants[7][shared.PermViewAllRNCs] = false
	assert.False(t, resolver.HasPermission(context.Background(), 2, shared.PermViewAllRNCs))
}

func TestDepartmentDefaults(t *testing.T) {
	store := &mockStore{principals: map[int64]Principal{
		3: {ID: 3, Role: "user", Department: "Quality"},
		4: {ID: 4, Role: "user", Department: "Production"},
		5: {ID: 5, Role: "user", Department: "IT"},
	}}
	resolver := NewResolver(store, testLogger())
	ctx := context.Background()

	// Everyone may work on their own records.
	assert.True(t, resolver.HasPermission(ctx, 4, shared.PermViewOwnRNCs))
	assert.True(t, resolver.HasPermission(ctx, 4, shared.PermEditRNCs))

	// Broad viewing is limited to Administration, IT and Quality.
	assert.True(t, resolver.HasPermission(ctx, 3, shared.PermViewAllRNCs))
	assert.True(t, resolver.HasPermission(ctx, 5, shared.PermViewAllRNCs))
	assert.False(t, resolver.HasPermission(ctx, 4, shared.PermViewAllRNCs))

	// Admin access excludes Quality.
	assert.False(t, resolver.HasPermission(ctx, 3, shared.PermAdminAccess))
	assert.True(t, resolver.HasPermission(ctx, 5, shared.PermAdminAccess))
}

func TestAccentedDepartmentNamesFold(t *testing.T) {
	store := &mockStore{principals: map[int64]Principal{
		6: {ID: 6, Role: "user", Department: "Administração"},
		7: {ID: 7, Role: "user", Department: "QUALIDADE"},
	}}
	resolver := NewResolver(store, testLogger())
	ctx := context.Background()

	assert.True(t, resolver.HasPermission(ctx, 6, shared.PermAdminAccess))
	assert.True(t, resolver.HasPermission(ctx, 7, shared.PermViewFinalizedRNCs))
	assert.False(t, resolver.HasPermission(ctx, 7, shared.PermAdminAccess))
}

func TestStoreErrorsFailClosed(t *testing.T) {
	boom := errors.New("connection reset")
	resolver := NewResolver(&mockStore{principalErr: boom}, testLogger())
	assert.False(t, resolver.HasPermission(context.Background(), 1, shared.PermViewOwnRNCs))

	store := &mockStore{
		principals: map[int64]Principal{
			2: {ID: 2, Role: "user", Department: "Quality", GroupID: groupID(7)},
		},
		grantErr: boom,
	}
	resolver = NewResolver(store, testLogger())
	// Even a department that would allow the permission is denied when the
	// group lookup errors out.
	assert.False(t, resolver.HasPermission(context.Background(), 2, shared.PermViewAllRNCs))
}

func TestUnknownPrincipalDenied(t *testing.T) {
	resolver := NewResolver(&mockStore{}, testLogger())
	assert.False(t, resolver.HasPermission(context.Background(), 99, shared.PermViewOwnRNCs))
}
