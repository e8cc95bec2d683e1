package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixapp/fixapp-api/internal/core/domain"
	"github.com/fixapp/fixapp-api/internal/core/ports"
)

// SessionService implements session issuance, validation, and revocation.
// Tokens are opaque bearer credentials supplied by the caller; the service
// stores and validates them but generates no randomness of its own.
type SessionService struct {
	repo       ports.SessionRepository
	defaultTTL time.Duration
	log        zerolog.Logger
}

func NewSessionService(repo ports.SessionRepository, defaultTTL time.Duration, log zerolog.Logger) *SessionService {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &SessionService{repo: repo, defaultTTL: defaultTTL, log: log}
}

// Create stores a session expiring at now + ttl. A non-positive ttl falls
// back to the configured default.
func (s *SessionService) Create(ctx context.Context, userID int64, token string, ttl time.Duration) (*domain.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("session: token must not be empty")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now().UTC()
	session := &domain.Session{
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return s.repo.Create(ctx, session)
}

// Validate resolves a token to its session and owning user. Absent and
// expired tokens are indistinguishable: both return domain.ErrSessionNotFound.
func (s *SessionService) Validate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	if token == "" {
		return nil, nil, domain.ErrSessionNotFound
	}
	return s.repo.FindByToken(ctx, token, time.Now().UTC())
}

// Revoke deletes the session matching token. Idempotent: revoking an
// already-absent token succeeds.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}

// PurgeExpired removes sessions past their expiry. Expired rows are already
// invisible to Validate; this only reclaims storage.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug().Int64("purged", n).Msg("expired sessions removed")
	}
	return n, nil
}
