package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/lifecycle"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, first_name, last_name, email, password_hash, role_id, deleted_flag, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u       user.User
		roleID  int16
		deleted bool
	)

	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&roleID,
		&deleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}

	u.Role = user.Role(roleID)
	u.State = lifecycle.FromFlag(deleted)

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.prom.ObserveDB("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO task_users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, int16(u.Role), u.State.Flag(), u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) && isConstraint(err, "task_users_active_email_uniq") {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// GetByID finds a user whether or not it was soft-deleted.
func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if !utils.IsUUID(id) {
		return user.User{}, user.ErrNotFound
	}

	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM task_users WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

// GetByIDs loads every user in ids in one round trip. Ids that do not
// resolve are simply absent from the map.
func (r *UsersRepo) GetByIDs(ctx context.Context, ids []string) (map[string]user.User, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if utils.IsUUID(id) {
			valid = append(valid, id)
		}
	}

	out := make(map[string]user.User, len(valid))
	if len(valid) == 0 {
		return out, nil
	}

	err := r.prom.ObserveDB("users.get_by_ids", func() error {
		rows, e := r.pool.Query(ctx, `SELECT `+userColumns+` FROM task_users WHERE id = ANY($1::uuid[])`, valid)
		if e != nil {
			return e
		}
		defer rows.Close()

		for rows.Next() {
			u, e := scanUser(rows)
			if e != nil {
				return e
			}
			out[u.ID] = u
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) GetActiveByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_active_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM task_users WHERE email = $1 AND deleted_flag = FALSE`,
			email,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) ActiveEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool

	err := r.prom.ObserveDB("users.active_email_exists", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM task_users WHERE email = $1 AND deleted_flag = FALSE)`,
			email,
		).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) ListActiveNonAdmins(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.prom.ObserveDB("users.list_active_non_admins", func() error {
		rows, e := r.pool.Query(ctx,
			`SELECT `+userColumns+`
			FROM task_users
			WHERE role_id <> $1 AND deleted_flag = FALSE
			ORDER BY first_name ASC, id ASC`,
			int16(user.RoleAdmin),
		)
		if e != nil {
			return e
		}
		defer rows.Close()

		for rows.Next() {
			u, e := scanUser(rows)
			if e != nil {
				return e
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) SoftDelete(ctx context.Context, id string) error {
	if !utils.IsUUID(id) {
		return user.ErrNotFound
	}

	return r.prom.ObserveDB("users.soft_delete", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE task_users SET deleted_flag = TRUE, updated_at = NOW() WHERE id = $1`,
			id,
		)
		if e != nil {
			return e
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}
