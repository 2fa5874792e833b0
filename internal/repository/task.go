package repository

import (
	"context"

	"task-tracker/internal/domain"
)

// TaskRepository exposes persistence operations for Task aggregates.
//
// Every operation that targets a single task is scoped by (id, ownerID) in one
// statement, so an ownership check can never be split from the mutation it
// guards. A task that is absent or owned by someone else yields domain.ErrNotFound.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	GetOwned(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)
	UpdateOwned(ctx context.Context, task *domain.Task) error
	ToggleOwned(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	DeleteOwned(ctx context.Context, id, ownerID int64) error
}
