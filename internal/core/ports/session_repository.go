package ports

import (
	"context"
	"time"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

// SessionRepository defines the interface for session persistence.
//
// FindByToken applies the expiry predicate server-side: a row whose
// expires_at is not strictly after now is treated as absent. Expired rows
// stay in storage until Delete or DeleteExpired removes them.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	FindByToken(ctx context.Context, token string, now time.Time) (*domain.User, *domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
