package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/lifecycle"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, name, user_id, task_date, completed_flag, completed_date, deleted_flag, created_at, updated_at`

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		t       task.Task
		deleted bool
	)

	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.UserID,
		&t.TaskDate,
		&t.Completed,
		&t.CompletedDate,
		&deleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return task.Task{}, err
	}

	t.State = lifecycle.FromFlag(deleted)
	return t, nil
}

func collectTasks(rows pgx.Rows) ([]task.Task, error) {
	defer rows.Close()

	out := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	err := r.prom.ObserveDB("tasks.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO tasks (`+taskColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			t.ID, t.Name, t.UserID, t.TaskDate, t.Completed, t.CompletedDate, t.State.Flag(), t.CreatedAt, t.UpdatedAt,
		)
		return e
	})
	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) getOne(ctx context.Context, op, query, id string) (task.Task, error) {
	if !utils.IsUUID(id) {
		return task.Task{}, task.ErrNotFound
	}

	var t task.Task
	err := r.prom.ObserveDB(op, func() error {
		var e error
		t, e = scanTask(r.pool.QueryRow(ctx, query, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// GetByID returns the task regardless of its deleted state.
func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	return r.getOne(ctx, "tasks.get_by_id",
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

func (r *TasksRepo) GetActiveByID(ctx context.Context, id string) (task.Task, error) {
	return r.getOne(ctx, "tasks.get_active_by_id",
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND deleted_flag = FALSE`, id)
}

func (r *TasksRepo) ListActiveByUser(ctx context.Context, userID string) ([]task.Task, error) {
	if !utils.IsUUID(userID) {
		return []task.Task{}, nil
	}

	var out []task.Task
	err := r.prom.ObserveDB("tasks.list_active_by_user", func() error {
		rows, e := r.pool.Query(ctx,
			`SELECT `+taskColumns+`
			FROM tasks
			WHERE user_id = $1 AND deleted_flag = FALSE
			ORDER BY created_at ASC, id ASC`,
			userID,
		)
		if e != nil {
			return e
		}

		out, e = collectTasks(rows)
		return e
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// List runs the pending or completed scan, newest first on the filter's
// order column.
func (r *TasksRepo) List(ctx context.Context, f task.ListFilter) ([]task.Task, error) {
	where := []string{"deleted_flag = FALSE", "completed_flag = $1"}
	args := []any{f.Completed}

	if f.UserID != nil {
		if !utils.IsUUID(*f.UserID) {
			return []task.Task{}, nil
		}
		args = append(args, *f.UserID)
		where = append(where, "user_id = $"+strconv.Itoa(len(args)))
	}

	q := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + f.OrderColumn() + ` DESC NULLS LAST, id ASC`

	var out []task.Task
	err := r.prom.ObserveDB("tasks.list", func() error {
		rows, e := r.pool.Query(ctx, q, args...)
		if e != nil {
			return e
		}

		out, e = collectTasks(rows)
		return e
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TasksRepo) HasActiveForUser(ctx context.Context, userID string) (bool, error) {
	if !utils.IsUUID(userID) {
		return false, nil
	}

	var exists bool
	err := r.prom.ObserveDB("tasks.has_active_for_user", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM tasks WHERE user_id = $1 AND deleted_flag = FALSE)`,
			userID,
		).Scan(&exists)
	})

	return exists, err
}

// Update persists every mutable column of t.
func (r *TasksRepo) Update(ctx context.Context, t task.Task) (task.Task, error) {
	if !utils.IsUUID(t.ID) {
		return task.Task{}, task.ErrNotFound
	}

	var out task.Task
	err := r.prom.ObserveDB("tasks.update", func() error {
		var e error
		out, e = scanTask(r.pool.QueryRow(ctx,
			`UPDATE tasks
			SET name = $2,
				completed_flag = $3,
				completed_date = $4,
				deleted_flag = $5,
				updated_at = $6
			WHERE id = $1
			RETURNING `+taskColumns,
			t.ID, t.Name, t.Completed, t.CompletedDate, t.State.Flag(), t.UpdatedAt,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return out, nil
}
