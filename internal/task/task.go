// Package task holds the to-do item model, its validation rules and the
// repository contract every backend and client implements.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Task is a single to-do item. ID is assigned by the store.
type Task struct {
	ID        int64  `json:"id" db:"id" bson:"_id"`
	Text      string `json:"text" db:"text" bson:"text"`
	Completed bool   `json:"completed" db:"completed" bson:"completed"`
}

var (
	ErrNotFound = errors.New("task not found")
	ErrInvalid  = errors.New("invalid task")
)

// ValidationError names the offending field. It unwraps to ErrInvalid.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid task: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Draft is the create payload.
type Draft struct {
	Text string `json:"text"`
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return &ValidationError{Field: "text", Reason: "is required"}
	}
	return nil
}

// Patch is the update payload. Nil fields are left unchanged.
type Patch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (p Patch) Validate() error {
	if p.Text == nil && p.Completed == nil {
		return &ValidationError{Field: "text|completed", Reason: "at least one is required"}
	}
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return nil
}

// Apply returns t with the patch fields written over it.
func (p Patch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// SetText and SetCompleted build single-field patches.
func SetText(s string) Patch { return Patch{Text: &s} }

func SetCompleted(b bool) Patch { return Patch{Completed: &b} }

// Repository is implemented by the persistence backends, by Manager and by
// the HTTP client. List returns tasks in insertion order.
type Repository interface {
	List(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, d Draft) (Task, error)
	Update(ctx context.Context, id int64, p Patch) error
	Delete(ctx context.Context, id int64) error
}
