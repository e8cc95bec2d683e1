package ports

import (
	"context"
	"time"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

// IdentityRepository defines the interface for user account persistence.
type IdentityRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	RecordLogin(ctx context.Context, userID int64, at time.Time) error
}
