package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func isConstraint(err error, name string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.ConstraintName == name
}
