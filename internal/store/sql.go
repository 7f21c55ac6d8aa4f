// Package store persists tasks. Every backend implements task.Repository
// and leaves id generation to the database.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"taskify/internal/task"
)

// SQLStore is shared by the MySQL and SQLite backends. Both use `?`
// placeholders, so only the DDL differs.
type SQLStore struct {
	db *sqlx.DB
}

func newSQLStore(ctx context.Context, db *sqlx.DB, ddl string) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	s := &SQLStore{db: db}
	if err := s.migrate(ctx, ddl); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) migrate(ctx context.Context, ddl string) error {
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]task.Task, error) {
	out := []task.Task{}
	if err := s.db.SelectContext(ctx, &out, `SELECT id, text, completed FROM tasks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks (text, completed) VALUES (?, ?)`, d.Text, false)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task.Task{ID: id, Text: d.Text, Completed: false}, nil
}

func (s *SQLStore) Update(ctx context.Context, id int64, p task.Patch) error {
	var sets []string
	var args []any
	if p.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *p.Text)
	}
	if p.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *p.Completed)
	}
	if len(sets) == 0 {
		return p.Validate()
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

// expectOneRow reports ErrNotFound when nothing matched. MySQL connections
// must be opened with clientFoundRows, otherwise a no-op update counts zero.
func expectOneRow(res rowsAffecter, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, task.ErrNotFound)
	}
	return nil
}
