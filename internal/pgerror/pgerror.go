package pgerror

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes for constraint violations we branch on.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	notNullViolation    = "23502"
)

// GetConstraintName extracts the violated constraint's name when err
// is a postgres constraint violation.
func GetConstraintName(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation,
			foreignKeyViolation,
			checkViolation,
			notNullViolation:
			if pgErr.ConstraintName != "" {
				return pgErr.ConstraintName, true
			}
		}
	}
	return "", false
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
