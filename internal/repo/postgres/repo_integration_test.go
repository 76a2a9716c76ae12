package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping postgres integration tests")
	}

	if err := db.Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := db.NewPool(dsn, 4)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func uniqueEmail() string {
	return "it-" + uuid.NewString() + "@example.com"
}

func TestUsersRepo_ActiveEmailUniqueness(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := postgres.NewUsersRepo(pool, nil)

	email := uniqueEmail()

	first, err := users.Create(ctx, user.NewMember("Ada", "Lovelace", email, "h"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := users.Create(ctx, user.NewMember("Ada", "Again", email, "h")); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("duplicate active email: err = %v, want ErrEmailTaken", err)
	}

	if err := users.SoftDelete(ctx, first.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := users.Create(ctx, user.NewMember("Ada", "Again", email, "h")); err != nil {
		t.Fatalf("email of a deleted user should be reusable: %v", err)
	}

	got, err := users.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get deleted user by id: %v", err)
	}
	if got.IsActive() {
		t.Fatal("expected deleted state to round-trip")
	}

	if _, err := users.GetByID(ctx, "not-a-uuid"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("non-uuid id: err = %v, want ErrNotFound", err)
	}
}

func TestTasksRepo_ListAndUpdate(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	users := postgres.NewUsersRepo(pool, nil)
	tasks := postgres.NewTasksRepo(pool, nil)

	owner, err := users.Create(ctx, user.NewMember("Grace", "Hopper", uniqueEmail(), "h"))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	older, err := tasks.Create(ctx, task.New("older", owner.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	newer, err := tasks.Create(ctx, task.New("newer", owner.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	ownerID := owner.ID
	pending, err := tasks.List(ctx, task.ListFilter{UserID: &ownerID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != newer.ID || pending[1].ID != older.ID {
		t.Fatalf("pending should be newest task_date first: %+v", pending)
	}

	busy, err := tasks.HasActiveForUser(ctx, owner.ID)
	if err != nil || !busy {
		t.Fatalf("HasActiveForUser = %v, %v", busy, err)
	}

	older.Complete(time.Now())
	if _, err := tasks.Update(ctx, older); err != nil {
		t.Fatalf("update: %v", err)
	}

	completed, err := tasks.List(ctx, task.ListFilter{Completed: true, UserID: &ownerID})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].CompletedDate == nil {
		t.Fatalf("unexpected completed list %+v", completed)
	}

	if err := newer.SoftDelete(time.Now()); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := tasks.Update(ctx, newer); err != nil {
		t.Fatalf("persist delete: %v", err)
	}

	if _, err := tasks.GetActiveByID(ctx, newer.ID); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("deleted task should be hidden from active lookups: %v", err)
	}
	if _, err := tasks.GetByID(ctx, newer.ID); err != nil {
		t.Fatalf("deleted task should still resolve by id: %v", err)
	}

	owners, err := users.GetByIDs(ctx, []string{owner.ID, "bogus"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(owners) != 1 || owners[owner.ID].FullName() != "Grace Hopper" {
		t.Fatalf("unexpected owners %+v", owners)
	}
}
