// Package auth implements the session login flow.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// ErrBadCredentials covers both an unknown account and a wrong password, so
// the response never reveals which one it was.
var ErrBadCredentials = errors.New("invalid email or password")

// CredentialStore looks up the stored password hash for an account.
type CredentialStore interface {
	Credentials(ctx context.Context, email string) (int64, string, error)
}

// Service verifies credentials.
type Service struct {
	store  CredentialStore
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(store CredentialStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Login verifies the password and returns the principal id.
func (s *Service) Login(ctx context.Context, email, password string) (int64, error) {
	id, hash, err := s.store.Credentials(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, ErrBadCredentials
		}
		s.logger.Error("credential lookup", slog.Any("error", err))
		return 0, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return 0, ErrBadCredentials
	}
	return id, nil
}
