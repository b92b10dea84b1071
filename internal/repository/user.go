package repository

import (
	"context"

	"polls-server/internal/domain"
)

// UserRepository defines persistence operations for administrator accounts.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
