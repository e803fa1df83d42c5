package fieldlocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

type mockRepo struct {
	locks map[int64]map[string]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{locks: make(map[int64]map[string]bool)}
}

func (m *mockRepo) LockedFields(ctx context.Context, groupID int64) ([]string, error) {
	var names []string
	for field, locked := range m.locks[groupID] {
		if locked {
			names = append(names, field)
		}
	}
	return names, nil
}

func (m *mockRepo) ListLocks(ctx context.Context, groupID int64) ([]Lock, error) {
	var out []Lock
	for field, locked := range m.locks[groupID] {
		out = append(out, Lock{GroupID: groupID, FieldName: field, IsLocked: locked})
	}
	return out, nil
}

func (m *mockRepo) UpsertLocks(ctx context.Context, groupID int64, locks map[string]bool) error {
	if m.locks[groupID] == nil {
		m.locks[groupID] = make(map[string]bool)
	}
	for field, locked := range locks {
		m.locks[groupID][field] = locked
	}
	return nil
}

func (m *mockRepo) DeleteLocks(ctx context.Context, groupID int64) (int64, error) {
	n := int64(len(m.locks[groupID]))
	delete(m.locks, groupID)
	return n, nil
}

func TestUpdateLocksSkipsUnknownFields(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	written, err := svc.UpdateLocks(context.Background(), 5, map[string]bool{
		"price":         true,
		"title":         false,
		"no_such_field": true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.NotContains(t, repo.locks[5], "no_such_field")

	locked, err := svc.LockedFields(context.Background(), 5)
	require.NoError(t, err)
	assert.Contains(t, locked, "price")
	assert.NotContains(t, locked, "title")
}

func TestLockedFieldsDefaultsToUnlocked(t *testing.T) {
	svc := NewService(newMockRepo())

	locked, err := svc.LockedFields(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, locked)

	// Ungrouped principals never have locks.
	locked, err = svc.LockedFields(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, locked)
}

func TestResetUnlocksEverything(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.UpdateLocks(context.Background(), 5, map[string]bool{"price": true, "status": true})
	require.NoError(t, err)

	deleted, err := svc.Reset(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	locked, err := svc.LockedFields(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, locked)
}

func TestValidateSubmissionRejectsWholeForm(t *testing.T) {
	locked := map[string]struct{}{"price": {}}

	// A locked field with a value fails the whole submission even though
	// the other fields are fine.
	err := ValidateSubmission(map[string]string{"title": "ok", "price": "999"}, locked)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Contains(t, err.Error(), "price")

	// A locked field left empty passes.
	err = ValidateSubmission(map[string]string{"title": "ok", "price": ""}, locked)
	assert.NoError(t, err)
}

func TestValidateSubmissionRejectsUnknownFields(t *testing.T) {
	err := ValidateSubmission(map[string]string{"definitely_not_a_field": "x"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
