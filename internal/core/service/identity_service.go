package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixapp/fixapp-api/internal/core/domain"
	"github.com/fixapp/fixapp-api/internal/core/ports"
	"github.com/fixapp/fixapp-api/pkg/password"
)

// IdentityService implements account registration and credential verification.
type IdentityService struct {
	repo ports.IdentityRepository
	log  zerolog.Logger
}

func NewIdentityService(repo ports.IdentityRepository, log zerolog.Logger) *IdentityService {
	return &IdentityService{repo: repo, log: log}
}

// Register hashes the password and inserts a new account. A duplicate
// username or email surfaces as domain.ErrUserExists, an expected,
// recoverable outcome, never a raw storage error.
func (s *IdentityService) Register(ctx context.Context, username, email, plaintext, fullName string) (*domain.User, error) {
	if username == "" || email == "" || plaintext == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Authenticate verifies username and password. An unknown username and a
// wrong password both yield domain.ErrInvalidCredentials so callers cannot
// enumerate accounts. On success last_login is recorded best-effort: a
// failed timestamp update is logged and never fails the authentication.
func (s *IdentityService) Authenticate(ctx context.Context, username, plaintext string) (*domain.User, error) {
	if username == "" || plaintext == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.RecordLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("recording last_login failed")
	} else {
		user.LastLogin = &now
	}

	return user, nil
}
