package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"taskify/internal/task"
)

func newMemStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteScenario(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("expected empty list, got %#v", all)
	}

	milk, err := s.Create(ctx, task.Draft{Text: "buy milk"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if want := (task.Task{ID: 1, Text: "buy milk"}); milk != want {
		t.Fatalf("Create: got %+v, want %+v", milk, want)
	}
	bills, err := s.Create(ctx, task.Draft{Text: "pay bills"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if bills.ID != 2 {
		t.Fatalf("second id: got %d, want 2", bills.ID)
	}

	if err := s.Update(ctx, milk.ID, task.SetCompleted(true)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	all, _ = s.List(ctx)
	want := []task.Task{
		{ID: 1, Text: "buy milk", Completed: true},
		{ID: 2, Text: "pay bills", Completed: false},
	}
	if !reflect.DeepEqual(all, want) {
		t.Fatalf("after update: got %+v, want %+v", all, want)
	}

	if err := s.Delete(ctx, bills.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, _ = s.List(ctx)
	if !reflect.DeepEqual(all, want[:1]) {
		t.Fatalf("after delete: got %+v, want %+v", all, want[:1])
	}
}

func TestSQLiteUnknownIDLeavesStateUnchanged(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, task.Draft{Text: "buy milk"}); err != nil {
		t.Fatal(err)
	}
	before, _ := s.List(ctx)

	if err := s.Update(ctx, 42, task.SetText("nope")); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, 42); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}

	after, _ := s.List(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state changed: before %+v, after %+v", before, after)
	}
}

func TestSQLiteUpdateIsIdempotent(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	tk, _ := s.Create(ctx, task.Draft{Text: "buy milk"})

	p := task.Patch{Text: task.SetText("buy oat milk").Text, Completed: task.SetCompleted(true).Completed}
	for i := 0; i < 2; i++ {
		if err := s.Update(ctx, tk.ID, p); err != nil {
			t.Fatalf("Update #%d: %v", i+1, err)
		}
	}
	all, _ := s.List(ctx)
	if want := []task.Task{{ID: tk.ID, Text: "buy oat milk", Completed: true}}; !reflect.DeepEqual(all, want) {
		t.Errorf("got %+v, want %+v", all, want)
	}
}

func TestSQLiteUpdateLeavesOtherField(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	tk, _ := s.Create(ctx, task.Draft{Text: "buy milk"})

	if err := s.Update(ctx, tk.ID, task.SetCompleted(true)); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, tk.ID, task.SetText("buy bread")); err != nil {
		t.Fatal(err)
	}
	all, _ := s.List(ctx)
	if all[0].Text != "buy bread" || !all[0].Completed {
		t.Errorf("got %+v", all[0])
	}
}

func TestSQLiteEmptyPatchRejected(t *testing.T) {
	s := newMemStore(t)
	if err := s.Update(context.Background(), 1, task.Patch{}); !errors.Is(err, task.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSQLiteIDsNotReused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := s.Create(ctx, task.Draft{Text: "a"})
	b, _ := s.Create(ctx, task.Draft{Text: "b"})
	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	c, _ := s.Create(ctx, task.Draft{Text: "c"})
	if c.ID == a.ID || c.ID == b.ID {
		t.Errorf("id %d reused (a=%d b=%d)", c.ID, a.ID, b.ID)
	}
	all, _ := s.List(ctx)
	if len(all) != 2 || all[0].ID != a.ID || all[1].ID != c.ID {
		t.Errorf("unexpected list %+v", all)
	}
}

func TestSQLiteConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	const n = 25
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk, err := s.Create(ctx, task.Draft{Text: fmt.Sprintf("task %d", i)})
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			ids <- tk.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d ids, got %d", n, len(seen))
	}
	all, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != n {
		t.Errorf("List: got %d tasks, want %d", len(all), n)
	}
}
