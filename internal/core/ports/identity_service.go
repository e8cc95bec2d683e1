package ports

import (
	"context"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

type IdentityService interface {
	Register(ctx context.Context, username, email, plaintext, fullName string) (*domain.User, error)
	Authenticate(ctx context.Context, username, plaintext string) (*domain.User, error)
}
