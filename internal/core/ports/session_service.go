package ports

import (
	"context"
	"time"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

type SessionService interface {
	// Create stores a new session for userID. The token is supplied by the
	// caller and must be cryptographically random and unique; the store does
	// not re-derive or judge its entropy.
	Create(ctx context.Context, userID int64, token string, ttl time.Duration) (*domain.Session, error)
	Validate(ctx context.Context, token string) (*domain.User, *domain.Session, error)
	Revoke(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}
