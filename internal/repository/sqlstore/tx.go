package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// dbtx is the subset of database/sql used by the queries.
// Both *sql.DB and *sql.Tx satisfy it.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction and commits on success or rolls back on
// error or panic. Panics are rethrown. Whatever fn returns is passed through
// s.fail, so the caller always gets an *apperror.AppError.
//
// fn must only use tx. With SQLite's single connection, touching s.conn
// from inside fn would wait forever on the connection fn already holds.
func (s *Store) withTx(ctx context.Context, op string, fn func(ctx context.Context, tx dbtx) error) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return s.fail(op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", "op", op, "error", rbErr)
			}
			err = s.fail(op, err)
			return
		}
		if err = tx.Commit(); err != nil {
			err = s.fail(op, err)
		}
	}()

	err = fn(ctx, tx)
	return err
}

// q rebinds "?" placeholders to "$1, $2, ..." for Postgres. None of the
// queries in this package contain a literal question mark.
func (s *Store) q(query string) string {
	if s.dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
