package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Store hands out request-scoped sessions from a shared pool.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Session pins one pooled connection for the lifetime of a request.
// Callers must Close it on every exit path.
type Session struct {
	conn  *sql.Conn
	tasks *TaskRepository
}

func (s *Store) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	return &Session{conn: conn, tasks: NewTaskRepository(conn)}, nil
}

func (s *Session) Tasks() *TaskRepository {
	return s.tasks
}

// Close returns the connection to the pool. It is safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
