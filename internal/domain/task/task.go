package task

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/lifecycle"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("task not found")

type Task struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	UserID        string          `json:"user_id"`
	TaskDate      time.Time       `json:"task_date"`
	Completed     bool            `json:"completed_flag"`
	CompletedDate *time.Time      `json:"completed_date"`
	State         lifecycle.State `json:"deleted_flag"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// New builds a pending, active task owned by userID.
func New(name, userID string, taskDate time.Time) Task {
	now := time.Now().UTC()

	return Task{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		UserID:    userID,
		TaskDate:  taskDate.UTC(),
		State:     lifecycle.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t Task) IsActive() bool {
	return t.State.IsActive()
}

// Complete marks the task done. It reports false and leaves the task
// untouched when it was already completed.
func (t *Task) Complete(now time.Time) bool {
	if t.Completed {
		return false
	}

	now = now.UTC()
	t.Completed = true
	t.CompletedDate = &now
	t.UpdatedAt = now

	return true
}

// Patch holds the optional fields accepted by an update.
type Patch struct {
	Name      *string
	Completed *bool
}

// Apply writes the supplied fields. completed_date is stamped on every
// update whether or not the completion flag was part of the patch.
func (t *Task) Apply(p Patch, now time.Time) {
	now = now.UTC()

	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}

	t.CompletedDate = &now
	t.UpdatedAt = now
}

func (t *Task) SoftDelete(now time.Time) error {
	next, err := t.State.Delete()
	if err != nil {
		return err
	}

	t.State = next
	t.UpdatedAt = now.UTC()

	return nil
}

// ListFilter describes the pending/completed scans. Only active tasks are
// ever returned by a filtered scan.
type ListFilter struct {
	Completed bool
	UserID    *string
}

// OrderColumn is the column a filtered scan is sorted on, newest first.
func (f ListFilter) OrderColumn() string {
	if f.Completed {
		return "completed_date"
	}
	return "task_date"
}
