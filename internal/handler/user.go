package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/inventory-api/internal/auth"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/service"
)

// UserHandler serves /users. Every route is mounted behind RequireAuth.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList serves GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGet serves GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// updateUserRequest uses pointers so an omitted field (nil) can be told
// apart from one sent as "".
type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

// HandleUpdate serves PUT /users/{id}
//
// Any subset of username, password, email, full_name may be sent. A field
// sent as null is treated as omitted.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Update(r.Context(), id, model.UserUpdate{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if caller, ok := auth.IdentityFromContext(r.Context()); ok {
		h.logger.Info("user updated", "user_id", id, "by", caller.ID)
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete serves DELETE /users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if caller, ok := auth.IdentityFromContext(r.Context()); ok {
		h.logger.Info("user deleted", "user_id", id, "by", caller.ID)
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "user deleted"})
}
