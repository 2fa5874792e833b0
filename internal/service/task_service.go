package service

import (
	"context"
	"errors"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

// TaskService coordinates task operations. Every method is scoped to ownerID;
// a task that is absent or belongs to someone else yields domain.ErrNotFoundOrForbidden.
type TaskService interface {
	List(ctx context.Context, ownerID int64) ([]domain.Task, error)
	Get(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	Create(ctx context.Context, ownerID int64, title, description string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Toggle(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) List(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

func (s *taskService) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, ownership(err)
	}
	return task, nil
}

func (s *taskService) Create(ctx context.Context, ownerID int64, title, description string) (*domain.Task, error) {
	if domain.IsBlank(title) {
		return nil, domain.Invalid("title is required")
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
	}
	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if _, err := patch.ResolveTitle(); err != nil {
		return nil, err
	}

	current, err := s.tasks.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, ownership(err)
	}

	next, err := domain.MergeTask(*current, patch)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateOwned(ctx, &next); err != nil {
		return nil, ownership(err)
	}
	return &next, nil
}

func (s *taskService) Toggle(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	task, err := s.tasks.ToggleOwned(ctx, id, ownerID)
	if err != nil {
		return nil, ownership(err)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, id int64) error {
	return ownership(s.tasks.DeleteOwned(ctx, id, ownerID))
}

// ownership collapses "no such row" into the caller-facing error that does not
// reveal whether the task exists for another owner.
func ownership(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFoundOrForbidden
	}
	return err
}
