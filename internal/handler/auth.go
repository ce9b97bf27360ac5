package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/inventory-api/internal/service"
)

// AuthHandler serves login and registration. Neither route is gated.
type AuthHandler struct {
	auth   *service.AuthService
	users  *service.UserService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// HandleLogin verifies credentials and returns an access token.
//
// HTTP: POST /login
// REQUEST BODY: {"username": "ana", "password": "p1"}
// RESPONSE: 200 {"access_token": "<jwt>"}, 400 missing fields, 401 bad credentials
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: result.Token})
}

type registerRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
}

// HandleRegister creates an account.
//
// HTTP: POST /registry
// REQUEST BODY: {"username": "ana", "password": "p1", "email": "a@x.com", "full_name": "Ana"}
// RESPONSE: 201 user, 400 missing field or username/email taken
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
