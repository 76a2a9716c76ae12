package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/security"
)

type AdminStore interface {
	GetActiveByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the configured admin account unless an active user
// already owns that email. Registration only ever creates members, so this is
// how an installation gets its first admin.
func EnsureAdminUser(ctx context.Context, store AdminStore, cfg config.Config, log *slog.Logger) error {
	if !cfg.SeedAdmin() {
		return nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	_, err := store.GetActiveByEmail(ctx, email)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	u, err := store.Create(ctx, user.NewAdmin(cfg.AdminFirstName, cfg.AdminLastName, email, hash))

	if err != nil {
		return err
	}

	log.Info("admin user seeded", "user_id", u.ID)

	return nil
}
