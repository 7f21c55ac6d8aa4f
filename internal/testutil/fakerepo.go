// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"taskify/internal/task"
)

// FakeRepository is an in-memory implementation of task.Repository for testing.
// It performs no validation; wrap it in task.Manager for that.
type FakeRepository struct {
	mu     sync.RWMutex
	tasks  []task.Task
	nextID int64

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Calls counts every invocation, including failed ones.
	Calls map[string]int
}

// NewFakeRepository creates an empty FakeRepository. Ids start at 1.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{nextID: 1, Calls: make(map[string]int)}
}

// Seed adds a task with the next id and returns it.
func (f *FakeRepository) Seed(text string, completed bool) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := task.Task{ID: f.nextID, Text: text, Completed: completed}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Snapshot returns a copy of the stored tasks.
func (f *FakeRepository) Snapshot() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *FakeRepository) called(op string) {
	f.mu.Lock()
	f.Calls[op]++
	f.mu.Unlock()
}

// List implements task.Repository.
func (f *FakeRepository) List(ctx context.Context) ([]task.Task, error) {
	f.called("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Snapshot(), nil
}

// Create implements task.Repository.
func (f *FakeRepository) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	f.called("create")
	if f.CreateErr != nil {
		return task.Task{}, f.CreateErr
	}
	return f.Seed(d.Text, false), nil
}

// Update implements task.Repository.
func (f *FakeRepository) Update(ctx context.Context, id int64, p task.Patch) error {
	f.called("update")
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = p.Apply(t)
			return nil
		}
	}
	return task.ErrNotFound
}

// Delete implements task.Repository.
func (f *FakeRepository) Delete(ctx context.Context, id int64) error {
	f.called("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return task.ErrNotFound
}
