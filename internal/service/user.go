// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never a concrete store, so tests pass
// in-memory fakes. Every method returns an *apperror.AppError on failure and
// nothing here knows about HTTP.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/auth"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/repository"
)

const (
	MaxUsernameLength = 255
	MaxEmailLength    = 255
	MaxFullNameLength = 255
)

// RegisterInput is what a new account needs. FullName is optional.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName *string
}

// UserService owns the identity rules: credentials are hashed before they
// reach the repository, usernames are trimmed, emails are trimmed and
// case-folded so "Ana@X.com" and "ana@x.com" are the same account.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger.With("component", "user_service"),
	}
}

// Authenticate returns the user only if password matches the stored digest.
//
// An unknown username and a wrong password produce the same error, and both
// cost one bcrypt comparison, so neither the response nor its timing tells a
// caller which usernames exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	invalid := apperror.Unauthorized("invalid credentials")

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.VerifyNothing(password)
			return nil, invalid
		}
		return nil, err
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		return nil, invalid
	}

	return user, nil
}

// Register hashes the password and creates the account. A taken username or
// email fails with ErrConflict and creates nothing.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username, err := validateUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateFullName(in.FullName); err != nil {
		return nil, err
	}

	digest, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user, err := s.users.Create(ctx, model.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		FullName:     in.FullName,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("registration rejected", "reason", err.Error())
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.FindAll(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	return s.users.FindByID(ctx, id)
}

// Update writes only the fields present in upd.
//
// A present username, email or password may not be blank: they are required
// on every account. A present full name may be empty and is stored as such.
func (s *UserService) Update(ctx context.Context, id int64, upd model.UserUpdate) (*model.User, error) {
	if id <= 0 {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	if upd.Empty() {
		return s.users.FindByID(ctx, id)
	}

	var patch model.UserPatch

	if upd.Username != nil {
		username, err := validateUsername(*upd.Username)
		if err != nil {
			return nil, err
		}
		patch.Username = &username
	}
	if upd.Email != nil {
		email, err := validateEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		digest, err := s.passwords.Hash(*upd.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		patch.PasswordHash = &digest
	}
	if upd.FullName != nil {
		if err := validateFullName(upd.FullName); err != nil {
			return nil, err
		}
		patch.FullName = upd.FullName
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "password_changed", patch.PasswordHash != nil)
	return user, nil
}

// Delete removes the account and returns it as it was.
func (s *UserService) Delete(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}

	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user deleted", "user_id", id)
	return user, nil
}

// NormalizeEmail trims and case-folds an address.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// =========================================================================
// VALIDATION
// =========================================================================

func validateUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	switch {
	case username == "":
		return "", apperror.ValidationFailed("username", "username is required")
	case len(username) > MaxUsernameLength:
		return "", apperror.ValidationFailed("username", "username must be 255 characters or fewer")
	}
	return username, nil
}

func validateEmail(raw string) (string, error) {
	email := NormalizeEmail(raw)
	switch {
	case email == "":
		return "", apperror.ValidationFailed("email", "email is required")
	case len(email) > MaxEmailLength:
		return "", apperror.ValidationFailed("email", "email must be 255 characters or fewer")
	case !strings.Contains(email, "@"):
		return "", apperror.ValidationFailed("email", "email must contain @")
	}
	return email, nil
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return apperror.ValidationFailed("password", "password is required")
	case len(password) > auth.MaxPasswordBytes:
		return apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}
	return nil
}

func validateFullName(fullName *string) error {
	if fullName != nil && len(*fullName) > MaxFullNameLength {
		return apperror.ValidationFailed("full_name", "full_name must be 255 characters or fewer")
	}
	return nil
}
