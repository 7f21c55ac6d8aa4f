// Package tasklist keeps the client-side mirror of the task list.
//
// Every action is one awaited round trip against a task.Repository (the
// HTTP client, or a local store when offline). Local state changes only
// after the repository confirms; failures leave it untouched and are logged.
// Concurrent actions are not ordered against each other: whichever response
// arrives last is what the mirror shows.
package tasklist

import (
	"context"
	"log/slog"
	"sync"

	"taskify/internal/task"
)

type State struct {
	repo task.Repository

	mu       sync.Mutex
	tasks    []task.Task
	onChange func([]task.Task)
}

func New(repo task.Repository) *State {
	return &State{repo: repo}
}

// OnChange registers fn to receive a snapshot after every successful action.
func (s *State) OnChange(fn func([]task.Task)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Tasks returns a copy of the mirrored list.
func (s *State) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *State) snapshot() []task.Task {
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Load replaces the mirror with the repository's list.
func (s *State) Load(ctx context.Context) error {
	all, err := s.repo.List(ctx)
	if err != nil {
		slog.Warn("load tasks failed", "error", err)
		return err
	}
	s.mutate(func() { s.tasks = append([]task.Task(nil), all...) })
	return nil
}

// Add creates a task and appends the stored record.
func (s *State) Add(ctx context.Context, text string) (task.Task, error) {
	d := task.Draft{Text: text}
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	t, err := s.repo.Create(ctx, d)
	if err != nil {
		slog.Warn("add task failed", "error", err)
		return task.Task{}, err
	}
	s.mutate(func() { s.tasks = append(s.tasks, t) })
	return t, nil
}

// Edit replaces the text of task id.
func (s *State) Edit(ctx context.Context, id int64, text string) error {
	p := task.SetText(text)
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, p); err != nil {
		slog.Warn("edit task failed", "id", id, "error", err)
		return err
	}
	s.mutate(func() { s.apply(id, p) })
	return nil
}

// Toggle inverts the completed flag of task id. The task must be mirrored
// locally, since its current flag decides what is sent.
func (s *State) Toggle(ctx context.Context, id int64) error {
	s.mu.Lock()
	i := s.index(id)
	var completed bool
	if i >= 0 {
		completed = s.tasks[i].Completed
	}
	s.mu.Unlock()
	if i < 0 {
		return task.ErrNotFound
	}

	p := task.SetCompleted(!completed)
	if err := s.repo.Update(ctx, id, p); err != nil {
		slog.Warn("toggle task failed", "id", id, "error", err)
		return err
	}
	s.mutate(func() { s.apply(id, p) })
	return nil
}

// Remove deletes task id.
func (s *State) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		slog.Warn("remove task failed", "id", id, "error", err)
		return err
	}
	s.mutate(func() {
		if i := s.index(id); i >= 0 {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		}
	})
	return nil
}

// mutate runs fn under the lock, then notifies outside it.
func (s *State) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshot()
	notify := s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

// apply patches the mirrored entry; a task no longer mirrored is skipped.
func (s *State) apply(id int64, p task.Patch) {
	if i := s.index(id); i >= 0 {
		s.tasks[i] = p.Apply(s.tasks[i])
	}
}

func (s *State) index(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
