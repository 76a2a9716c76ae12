package service

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

// UserStore is the persistence the user directory needs. Lookups by id
// ignore the deleted state; lookups by email only see active users.
type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]user.User, error)
	GetActiveByEmail(ctx context.Context, email string) (user.User, error)
	ActiveEmailExists(ctx context.Context, email string) (bool, error)
	ListActiveNonAdmins(ctx context.Context) ([]user.User, error)
	SoftDelete(ctx context.Context, id string) error
}

// TaskStore is the persistence the task registry needs.
type TaskStore interface {
	Create(ctx context.Context, t task.Task) (task.Task, error)
	GetByID(ctx context.Context, id string) (task.Task, error)
	GetActiveByID(ctx context.Context, id string) (task.Task, error)
	ListActiveByUser(ctx context.Context, userID string) ([]task.Task, error)
	List(ctx context.Context, f task.ListFilter) ([]task.Task, error)
	HasActiveForUser(ctx context.Context, userID string) (bool, error)
	Update(ctx context.Context, t task.Task) (task.Task, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}
