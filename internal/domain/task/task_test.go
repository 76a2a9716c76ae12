package task_test

import (
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/lifecycle"
	"github.com/geocoder89/taskhub/internal/domain/task"
)

func TestNewTaskIsPendingAndActive(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tk := task.New("  Buy milk ", "user-1", date)

	if tk.Name != "Buy milk" {
		t.Fatalf("got name %q", tk.Name)
	}
	if tk.Completed || tk.CompletedDate != nil {
		t.Fatalf("new task should be pending: %+v", tk)
	}
	if !tk.IsActive() {
		t.Fatal("new task should be active")
	}
	if !tk.TaskDate.Equal(date) {
		t.Fatalf("got task date %v want %v", tk.TaskDate, date)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	tk := task.New("write report", "user-1", time.Now())

	first := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	if !tk.Complete(first) {
		t.Fatal("first completion should change the task")
	}

	if tk.Complete(first.Add(time.Hour)) {
		t.Fatal("second completion should be a no-op")
	}
	if !tk.CompletedDate.Equal(first) {
		t.Fatalf("completed date moved: %v", tk.CompletedDate)
	}
}

func TestApplyAlwaysStampsCompletedDate(t *testing.T) {
	tk := task.New("write report", "user-1", time.Now())
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	name := "write summary"
	tk.Apply(task.Patch{Name: &name}, now)

	if tk.Name != name {
		t.Fatalf("got name %q", tk.Name)
	}
	if tk.Completed {
		t.Fatal("completion flag should not change when not supplied")
	}
	if tk.CompletedDate == nil || !tk.CompletedDate.Equal(now) {
		t.Fatalf("completed date not stamped: %v", tk.CompletedDate)
	}
}

func TestSoftDeleteOnce(t *testing.T) {
	tk := task.New("x", "user-1", time.Now())

	if err := tk.SoftDelete(time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tk.SoftDelete(time.Now()); !errors.Is(err, lifecycle.ErrAlreadyDeleted) {
		t.Fatalf("got %v, want ErrAlreadyDeleted", err)
	}
}

func TestEnrichFormatsDates(t *testing.T) {
	tk := task.New("x", "user-1", time.Date(2024, 1, 5, 8, 4, 3, 0, time.UTC))
	tk.CreatedAt = time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)

	name := "Ada Lovelace"
	e := task.Enrich(tk, &name, nil)

	if e.TaskDate != "05-01-2024 08:04:03" {
		t.Fatalf("got task_date %q", e.TaskDate)
	}
	if e.CreatedAt != "31-12-2023 23:00:00" {
		t.Fatalf("got created_at %q", e.CreatedAt)
	}
	if e.CompletedAt != nil {
		t.Fatalf("completed_at should be nil for pending task, got %q", *e.CompletedAt)
	}
	if e.UserName == nil || *e.UserName != name {
		t.Fatalf("got user name %v", e.UserName)
	}

	tk.Complete(time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC))
	e = task.Enrich(tk, nil, time.FixedZone("UTC+2", 2*60*60))

	if e.CompletedAt == nil || *e.CompletedAt != "06-01-2024 14:00:00" {
		t.Fatalf("got completed_at %v", e.CompletedAt)
	}
	if e.UserName != nil {
		t.Fatal("user name should stay nil when owner is unknown")
	}
}
