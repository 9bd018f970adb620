// Package service holds the task business rules that sit between the
// HTTP handlers and the repository.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/chepyr/task-api/internal/models"
)

// TaskRepository is the persistence surface the service needs.
type TaskRepository interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
}

type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo, now: now}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*models.Task, error) {
	return s.repo.FindAll(ctx)
}

// GetTask returns models.ErrTaskNotFound when id does not exist.
func (s *TaskService) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) CreateTask(ctx context.Context, in models.TaskCreate) (*models.Task, error) {
	status := in.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Insert(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies only the fields present in in. An update that carries
// no fields returns the stored task without writing.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, in models.TaskUpdate) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !in.ApplyTo(task) {
		return task, nil
	}

	updatedAt := s.now()
	task.UpdatedAt = &updatedAt
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask reports false when there was nothing to delete.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) (bool, error) {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, models.ErrTaskNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
