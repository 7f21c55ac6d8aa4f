package task

import (
	"context"
	"errors"
	"log/slog"
)

// Manager validates requests before they reach the repository and logs the
// outcome of every mutation. It is itself a Repository.
type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager { return &Manager{repo: repo} }

func (m *Manager) List(ctx context.Context) ([]Task, error) {
	all, err := m.repo.List(ctx)
	if err != nil {
		slog.Error("list tasks failed", "error", err)
		return nil, err
	}
	if all == nil {
		all = []Task{}
	}
	return all, nil
}

func (m *Manager) Create(ctx context.Context, d Draft) (Task, error) {
	if err := d.Validate(); err != nil {
		return Task{}, err
	}
	t, err := m.repo.Create(ctx, d)
	if err != nil {
		slog.Error("create task failed", "error", err)
		return Task{}, err
	}
	slog.Info("task created", "id", t.ID)
	return t, nil
}

func (m *Manager) Update(ctx context.Context, id int64, p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := m.repo.Update(ctx, id, p); err != nil {
		logFailure("update", id, err)
		return err
	}
	slog.Info("task updated", "id", id)
	return nil
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		logFailure("delete", id, err)
		return err
	}
	slog.Info("task deleted", "id", id)
	return nil
}

func logFailure(op string, id int64, err error) {
	if errors.Is(err, ErrNotFound) {
		slog.Debug(op+" task: not found", "id", id)
		return
	}
	slog.Error(op+" task failed", "id", id, "error", err)
}
