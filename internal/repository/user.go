package repository

import (
	"context"
	"errors"

	"vulnsite/internal/domain"
)

// ErrUserNotFound is returned by lookups that match no row.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines persistence operations for User entities.
// Implementations build their statements with the Query helpers in this package.
type UserRepository interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	FindByCredentials(ctx context.Context, username, password string) (int, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Insert(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}
