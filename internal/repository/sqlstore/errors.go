package sqlstore

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/inventory-api/internal/apperror"
)

// Postgres SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type constraintKind int

const (
	noConstraint constraintKind = iota
	uniqueConstraint
	foreignKeyConstraint
	checkConstraint
)

// constraint classifies err as an integrity violation, returning the
// constraint or column text the engine reported.
func constraint(err error) (constraintKind, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return uniqueConstraint, pgErr.ConstraintName
		case pgForeignKeyViolation:
			return foreignKeyConstraint, pgErr.ConstraintName
		case pgCheckViolation:
			return checkConstraint, pgErr.ConstraintName
		}
		return noConstraint, ""
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		msg := liteErr.Error()
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return uniqueConstraint, msg
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyConstraint, msg
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return checkConstraint, msg
		}
		// Extended codes may be off; fall back to the primary code.
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			switch {
			case strings.Contains(msg, "UNIQUE constraint failed"):
				return uniqueConstraint, msg
			case strings.Contains(msg, "FOREIGN KEY constraint failed"):
				return foreignKeyConstraint, msg
			case strings.Contains(msg, "CHECK constraint failed"):
				return checkConstraint, msg
			}
		}
	}

	return noConstraint, ""
}

// fail turns whatever a query returned into an *apperror.AppError. Errors
// that already carry a kind pass through untouched; integrity violations
// become conflict or validation errors; everything else is a storage fault
// and is logged here, once.
func (s *Store) fail(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch kind, detail := constraint(err); kind {
	case uniqueConstraint:
		return apperror.Conflict(resourceFor(detail), fieldFor(detail))
	case foreignKeyConstraint:
		return apperror.ValidationFailed("", "referenced record does not exist")
	case checkConstraint:
		return apperror.ValidationFailed("", "value out of range")
	}

	s.logger.Error("storage fault", "op", op, "error", err)
	return apperror.Storage(op, err)
}

// fieldFor picks the column out of "UNIQUE constraint failed: users.email"
// or a Postgres constraint name like "users_email_key".
func fieldFor(detail string) string {
	for _, f := range []string{"username", "email"} {
		if strings.Contains(detail, "."+f) || strings.Contains(detail, "_"+f+"_") {
			return f
		}
	}
	return ""
}

func resourceFor(detail string) string {
	if strings.Contains(detail, "users") {
		return "user"
	}
	return "record"
}
