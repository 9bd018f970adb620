package service

import (
	"context"
	"sync"

	"github.com/chepyr/task-api/internal/models"
)

type MockTaskRepository struct {
	tasks     map[int64]models.Task
	nextID    int64
	updates   int
	insertErr error
	findErr   error
	updateErr error
	deleteErr error
	mutex     sync.Mutex
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{tasks: make(map[int64]models.Task), nextID: 1}
}

func (m *MockTaskRepository) Insert(ctx context.Context, task *models.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}
	task.ID = m.nextID
	m.nextID++
	m.tasks[task.ID] = *task
	return nil
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	return &task, nil
}

func (m *MockTaskRepository) FindAll(ctx context.Context) ([]*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	tasks := []*models.Task{}
	for id := int64(1); id < m.nextID; id++ {
		if task, ok := m.tasks[id]; ok {
			tasks = append(tasks, &task)
		}
	}
	return tasks, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.tasks[task.ID]; !ok {
		return models.ErrTaskNotFound
	}
	m.tasks[task.ID] = *task
	m.updates++
	return nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.tasks[id]; !ok {
		return models.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}
