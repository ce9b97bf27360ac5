package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/repository"
)

// compile-time check that *Store implements repository.UserRepository
var _ repository.UserRepository = (*Store)(nil)

const userColumns = `id, username, email, full_name, password`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindAll returns every user ordered by id.
func (s *Store) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, s.fail("listing users", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, s.fail("scanning user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("iterating users", err)
	}

	return users, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return s.findUser(ctx, s.conn, "finding user by id", `id = ?`, id)
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, s.conn, "finding user by username", `username = ?`, username)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, s.conn, "finding user by email", `email = ?`, email)
}

func (s *Store) findUser(ctx context.Context, db dbtx, op, where string, arg any) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		s.q(`SELECT `+userColumns+` FROM users WHERE `+where), arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", describe(arg))
	}
	if err != nil {
		return nil, s.fail(op, err)
	}
	return u, nil
}

// Create inserts a user after checking that neither the username nor the
// email is taken. The schema's UNIQUE constraints catch the race where two
// registrations pass the check at the same time.
func (s *Store) Create(ctx context.Context, nu model.NewUser) (*model.User, error) {
	var created *model.User

	err := s.withTx(ctx, "creating user", func(ctx context.Context, tx dbtx) error {
		if err := s.ensureFree(ctx, tx, 0, &nu.Username, &nu.Email); err != nil {
			return err
		}

		var id int64
		err := tx.QueryRowContext(ctx,
			s.q(`INSERT INTO users (username, password, email, full_name)
			     VALUES (?, ?, ?, ?) RETURNING id`),
			nu.Username, nu.PasswordHash, nu.Email, nu.FullName,
		).Scan(&id)
		if err != nil {
			return err
		}

		created = &model.User{
			ID:           id,
			Username:     nu.Username,
			Email:        nu.Email,
			FullName:     nu.FullName,
			PasswordHash: nu.PasswordHash,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user created", "id", created.ID)
	return created, nil
}

// Update applies the non-nil fields of patch in one transaction. If the new
// username or email belongs to a different user nothing is written.
func (s *Store) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	var updated *model.User

	err := s.withTx(ctx, "updating user", func(ctx context.Context, tx dbtx) error {
		u, err := s.findUser(ctx, tx, "loading user for update", `id = ?`, id)
		if err != nil {
			return err
		}

		if err := s.ensureFree(ctx, tx, id, patch.Username, patch.Email); err != nil {
			return err
		}

		if patch.Username != nil {
			u.Username = *patch.Username
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.PasswordHash != nil {
			u.PasswordHash = *patch.PasswordHash
		}
		if patch.FullName != nil {
			fullName := *patch.FullName
			u.FullName = &fullName
		}

		_, err = tx.ExecContext(ctx,
			s.q(`UPDATE users SET username = ?, email = ?, password = ?, full_name = ? WHERE id = ?`),
			u.Username, u.Email, u.PasswordHash, u.FullName, id,
		)
		if err != nil {
			return err
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a user and returns the record as it was. A missing id is
// ErrNotFound every time it is asked for, so repeating a delete is harmless.
func (s *Store) Delete(ctx context.Context, id int64) (*model.User, error) {
	var deleted *model.User

	err := s.withTx(ctx, "deleting user", func(ctx context.Context, tx dbtx) error {
		u, err := s.findUser(ctx, tx, "loading user for delete", `id = ?`, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id); err != nil {
			return err
		}

		deleted = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// ensureFree fails with ErrConflict when username or email (if non-nil) is
// owned by a user other than self. self is 0 on create.
func (s *Store) ensureFree(ctx context.Context, tx dbtx, self int64, username, email *string) error {
	checks := []struct {
		field string
		value *string
	}{
		{"username", username},
		{"email", email},
	}

	for _, c := range checks {
		if c.value == nil {
			continue
		}
		var owner int64
		err := tx.QueryRowContext(ctx,
			s.q(`SELECT id FROM users WHERE `+c.field+` = ?`), *c.value,
		).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		if owner != self {
			return apperror.Conflict("user", c.field)
		}
	}

	return nil
}

func describe(v any) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return strconv.Quote(x)
	default:
		return "?"
	}
}
