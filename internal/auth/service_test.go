package auth

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

type mockStore struct {
	id   int64
	hash string
}

func (m *mockStore) Credentials(_ context.Context, email string) (int64, string, error) {
	if email != "inspector@example.com" {
		return 0, "", shared.ErrNotFound
	}
	return m.id, m.hash, nil
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewService(&mockStore{id: 7, hash: string(hash)}, slog.New(slog.DiscardHandler))

	ctx := context.Background()
	id, err := svc.Login(ctx, "inspector@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	_, err = svc.Login(ctx, "inspector@example.com", "wrong")
	require.ErrorIs(t, err, ErrBadCredentials)

	// Unknown account and wrong password are indistinguishable.
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, ErrBadCredentials)
}
