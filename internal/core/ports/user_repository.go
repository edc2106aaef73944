package ports

import (
	"context"

	"github.com/destru/catalog-api/internal/core/domain"
)

// UserRepository defines the interface for credential persistence.
type UserRepository interface {
	// Create inserts a new credential and returns the stored user with its
	// numeric id assigned. Returns domain.ErrNameExists when the name is
	// already taken.
	Create(ctx context.Context, name, passwordHash string) (*domain.User, error)

	// FindByName returns domain.ErrUserNotFound when no such user exists.
	FindByName(ctx context.Context, name string) (*domain.User, error)
}
