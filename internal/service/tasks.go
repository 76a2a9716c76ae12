package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type CreateTaskInput struct {
	Name   string `json:"name" validate:"required,max=255"`
	UserID string `json:"user_id" validate:"required"`
	Date   string `json:"date" validate:"required"`
}

type UpdateTaskInput struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	Completed *bool   `json:"completed_flag"`
}

// accepted layouts for the task date, most specific first
var taskDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]user.User, error)
}

// TransitionRecorder counts task lifecycle transitions.
type TransitionRecorder interface {
	TaskTransition(kind string)
}

type noopRecorder struct{}

func (noopRecorder) TaskTransition(string) {}

// Tasks is the task registry.
type Tasks struct {
	tasks   TaskStore
	users   UserLookup
	loc     *time.Location
	now     func() time.Time
	log     *slog.Logger
	metrics TransitionRecorder
}

type TasksOption func(*Tasks)

// WithLocation sets the zone used for naive task dates and for the
// formatted dates of enriched listings.
func WithLocation(loc *time.Location) TasksOption {
	return func(s *Tasks) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) TasksOption {
	return func(s *Tasks) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(m TransitionRecorder) TasksOption {
	return func(s *Tasks) {
		if m != nil {
			s.metrics = m
		}
	}
}

func NewTasks(tasks TaskStore, users UserLookup, log *slog.Logger, opts ...TasksOption) *Tasks {
	if log == nil {
		log = slog.Default()
	}

	s := &Tasks{
		tasks:   tasks,
		users:   users,
		loc:     time.UTC,
		now:     time.Now,
		log:     log,
		metrics: noopRecorder{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Tasks) ListOwn(ctx context.Context, callerID string) ([]task.Task, error) {
	out, err := s.tasks.ListActiveByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list own tasks: %w", err)
	}
	return out, nil
}

func (s *Tasks) ListPending(ctx context.Context, filterUserID *string) ([]task.Enriched, error) {
	return s.listScoped(ctx, task.ListFilter{Completed: false}, filterUserID)
}

func (s *Tasks) ListCompleted(ctx context.Context, filterUserID *string) ([]task.Enriched, error) {
	return s.listScoped(ctx, task.ListFilter{Completed: true}, filterUserID)
}

func (s *Tasks) listScoped(ctx context.Context, f task.ListFilter, filterUserID *string) ([]task.Enriched, error) {
	if filterUserID != nil {
		u, err := s.users.GetByID(ctx, *filterUserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return nil, ErrInvalidUser
			}
			return nil, fmt.Errorf("resolve filter user: %w", err)
		}

		if !u.Role.SeesAllTasks() {
			id := u.ID
			f.UserID = &id
		}
	}

	tasks, err := s.tasks.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	owners, err := s.users.GetByIDs(ctx, distinctOwners(tasks))
	if err != nil {
		return nil, fmt.Errorf("load task owners: %w", err)
	}

	out := make([]task.Enriched, 0, len(tasks))
	for _, t := range tasks {
		var name *string
		if owner, ok := owners[t.UserID]; ok {
			n := owner.FullName()
			name = &n
		}
		out = append(out, task.Enrich(t, name, s.loc))
	}

	return out, nil
}

func distinctOwners(tasks []task.Task) []string {
	seen := make(map[string]struct{}, len(tasks))
	ids := make([]string, 0, len(tasks))

	for _, t := range tasks {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		ids = append(ids, t.UserID)
	}

	return ids
}

// Create stores a new pending task. An omitted user_id falls back to the
// caller when one is known.
func (s *Tasks) Create(ctx context.Context, in CreateTaskInput, callerID string) (task.Task, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		in.UserID = callerID
	}
	in.Name = strings.TrimSpace(in.Name)

	verr, err := check(in)
	if err != nil {
		return task.Task{}, err
	}

	var taskDate time.Time
	if !verr.Has("date") {
		taskDate, err = s.parseTaskDate(in.Date)
		if err != nil {
			verr.Add("date", "is not a valid date")
		}
	}

	if !verr.Has("user_id") {
		if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				return task.Task{}, fmt.Errorf("resolve task owner: %w", err)
			}
			verr.Add("user_id", "the selected user_id is invalid")
		}
	}

	if err := verr.orNil(); err != nil {
		return task.Task{}, err
	}

	t, err := s.tasks.Create(ctx, task.New(in.Name, in.UserID, taskDate))
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.metrics.TaskTransition("created")

	return t, nil
}

func (s *Tasks) parseTaskDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	for _, layout := range taskDateLayouts {
		t, err := time.ParseInLocation(layout, raw, s.loc)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// Update applies a partial update. The lookup does not care whether the
// task was soft-deleted.
func (s *Tasks) Update(ctx context.Context, id string, in UpdateTaskInput) (task.Task, error) {
	verr, err := check(in)
	if err != nil {
		return task.Task{}, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		verr.Add("name", "may not be empty")
	}
	if err := verr.orNil(); err != nil {
		return task.Task{}, err
	}

	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}

	t.Apply(task.Patch{Name: in.Name, Completed: in.Completed}, s.now())

	updated, err := s.tasks.Update(ctx, t)
	if err != nil {
		return task.Task{}, err
	}

	s.metrics.TaskTransition("updated")

	return updated, nil
}

func (s *Tasks) Delete(ctx context.Context, id string) error {
	t, err := s.tasks.GetActiveByID(ctx, id)
	if err != nil {
		return err
	}

	if err := t.SoftDelete(s.now()); err != nil {
		return fmt.Errorf("%w: %v", task.ErrNotFound, err)
	}

	if _, err := s.tasks.Update(ctx, t); err != nil {
		return err
	}

	s.metrics.TaskTransition("deleted")

	s.log.InfoContext(ctx, "task soft-deleted", "task_id", t.ID, "owner_id", t.UserID)

	return nil
}

// Get returns the task as stored, deleted or not.
func (s *Tasks) Get(ctx context.Context, id string) (task.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// Complete marks an active task done. The boolean is false when the task
// was already completed, in which case nothing is written.
func (s *Tasks) Complete(ctx context.Context, id string) (task.Task, bool, error) {
	t, err := s.tasks.GetActiveByID(ctx, id)
	if err != nil {
		return task.Task{}, false, err
	}

	if !t.Complete(s.now()) {
		return t, false, nil
	}

	updated, err := s.tasks.Update(ctx, t)
	if err != nil {
		return task.Task{}, false, err
	}

	s.metrics.TaskTransition("completed")

	s.log.InfoContext(ctx, "task completed", "task_id", updated.ID, "owner_id", updated.UserID)

	return updated, true, nil
}
