package repository

import (
	"context"

	"task-tracker/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Create returns domain.ErrUserExists when the username is already taken;
// lookups return domain.ErrNotFound when no row matches.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
