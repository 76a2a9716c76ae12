package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
	order []string // insertion order stands in for storage order
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	r.items[t.ID] = t
	r.order = append(r.order, t.ID)
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) GetByID(_ context.Context, id string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) GetActiveByID(ctx context.Context, id string) (task.Task, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if !t.IsActive() {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) ListActiveByUser(_ context.Context, userID string) ([]task.Task, error) {
	return r.scan(func(t task.Task) bool {
		return t.IsActive() && t.UserID == userID
	}), nil
}

func (r *TasksRepo) List(_ context.Context, f task.ListFilter) ([]task.Task, error) {
	out := r.scan(func(t task.Task) bool {
		if !t.IsActive() || t.Completed != f.Completed {
			return false
		}
		return f.UserID == nil || t.UserID == *f.UserID
	})

	sort.SliceStable(out, func(i, j int) bool {
		a, b := orderKey(out[i], f), orderKey(out[j], f)
		return a.After(b)
	})

	return out, nil
}

func orderKey(t task.Task, f task.ListFilter) time.Time {
	if f.Completed {
		if t.CompletedDate == nil {
			return time.Time{}
		}
		return *t.CompletedDate
	}
	return t.TaskDate
}

func (r *TasksRepo) HasActiveForUser(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.items {
		if t.IsActive() && t.UserID == userID {
			return true, nil
		}
	}

	return false, nil
}

func (r *TasksRepo) Update(_ context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	r.items[t.ID] = t

	return t, nil
}

func (r *TasksRepo) scan(keep func(task.Task) bool) []task.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0)
	for _, id := range r.order {
		if t := r.items[id]; keep(t) {
			out = append(out, t)
		}
	}

	return out
}
