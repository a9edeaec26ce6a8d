package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/fluttercity/auth-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, name, email string, passwordHash []byte) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// UpdatePassword reports how many rows were touched so callers can
	// distinguish a missing account from a successful update.
	UpdatePassword(ctx context.Context, email string, passwordHash []byte) (int64, error)
}
