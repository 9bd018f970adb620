package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrTaskNotFound is returned when no task exists for the requested id.
var ErrTaskNotFound = errors.New("task not found")

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists every accepted status in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// ParseTaskStatus converts a wire literal into a TaskStatus.
// Matching is exact: "pending" is not accepted.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status %q", s)
	}
	return status, nil
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func (s TaskStatus) String() string {
	return string(s)
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return errors.New("task status must not be null")
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("task status must be a string")
	}
	status, err := ParseTaskStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Value keeps anything outside the closed set from reaching the store.
func (s TaskStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid task status %q", string(s))
	}
	return string(s), nil
}

func (s *TaskStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TaskStatus", src)
	}
	status, err := ParseTaskStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TaskResponse is the JSON view of a stored task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func NewTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTaskResponses(tasks []*Task) []TaskResponse {
	views := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskResponse(t))
	}
	return views
}
