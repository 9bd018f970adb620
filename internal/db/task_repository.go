package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chepyr/task-api/internal/models"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// defines methods for task db operations
type TaskRepositoryInterface interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
}

type TaskRepository struct {
	db DBTX
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, status, created_at, updated_at`

// Insert stores a new task and fills in the id assigned by the database.
func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (title, description, status, created_at)
	 VALUES ($1, $2, $3, $4) RETURNING id`

	err := r.db.QueryRowContext(
		ctx, query, task.Title, task.Description, task.Status, task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return task, nil
}

// FindAll returns every task in insertion order.
func (r *TaskRepository) FindAll(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update writes every mutable column of task in a single statement.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks SET title = $1, description = $2, status = $3, updated_at = $4
	 WHERE id = $5`

	res, err := r.db.ExecContext(
		ctx, query, task.Title, task.Description, task.Status, task.UpdatedAt, task.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return expectOneRow(res)
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var (
		description sql.NullString
		updatedAt   sql.NullTime
	)
	err := row.Scan(
		&task.ID, &task.Title, &description, &task.Status, &task.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	if updatedAt.Valid {
		task.UpdatedAt = &updatedAt.Time
	}
	return task, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}
