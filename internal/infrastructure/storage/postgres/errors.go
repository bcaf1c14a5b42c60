package postgres

import (
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"moneta/internal/core/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// TranslateError maps PostgreSQL error codes onto the application error
// taxonomy. A unique violation becomes a duplicate error, which the
// document creation retry loop depends on; a foreign key violation
// becomes a conflict. Anything else is wrapped with the operation name.
func TranslateError(op, entity string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewConflict("referenced by other records").
				WithDetail("entity", entity).
				WithCause(err)
		}
	}

	return fmt.Errorf("%s %s: %w", op, entity, err)
}

// NotFound reports whether err is a no-rows result from a scan.
func NotFound(err error) bool {
	return pgxscan.NotFound(err)
}
