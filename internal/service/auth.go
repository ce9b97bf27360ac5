package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/auth"
	"github.com/sakif/inventory-api/internal/model"
)

// Login outcomes reported to a LoginRecorder.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginError   = "error"
)

// LoginRecorder counts login attempts by outcome.
type LoginRecorder interface {
	RecordLogin(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordLogin(string) {}

// AuthService turns a username and password into an access token.
//
//	AuthHandler (HTTP) → AuthService → UserService.Authenticate → UserRepository
//	                                 ↘ TokenService (JWT)
type AuthService struct {
	users    *UserService
	tokens   *auth.TokenService
	recorder LoginRecorder
	logger   *slog.Logger
}

// NewAuthService wires an AuthService. recorder may be nil.
func NewAuthService(users *UserService, tokens *auth.TokenService, recorder LoginRecorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		recorder: recorder,
		logger:   logger.With("component", "auth_service"),
	}
}

// AuthResult bundles the user record and the issued JWT.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login authenticates and issues a token bound to the user's id and
// username. Missing fields are a validation error; anything wrong with the
// credentials themselves is ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("", "username and password are required")
	}

	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			s.recorder.RecordLogin(LoginFailure)
			s.logger.Warn("login failed", "username", username)
		} else {
			s.recorder.RecordLogin(LoginError)
		}
		return nil, err
	}

	token, err := s.tokens.Generate(auth.Identity{ID: user.ID, Username: user.Username})
	if err != nil {
		s.recorder.RecordLogin(LoginError)
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.recorder.RecordLogin(LoginSuccess)
	s.logger.Info("login succeeded", "user_id", user.ID)

	return &AuthResult{User: user, Token: token}, nil
}
