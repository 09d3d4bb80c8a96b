package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/notevault/notevault/internal/apperr"
	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/handler/dto"
	"github.com/notevault/notevault/internal/service"
)

// UserHandler handles HTTP requests for the identity lifecycle.
type UserHandler struct {
	svc         *service.UserService
	logger      *slog.Logger
	development bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger, development bool) *UserHandler {
	return &UserHandler{
		svc:         svc,
		logger:      logger,
		development: development,
	}
}

func (h *UserHandler) error(w http.ResponseWriter, r *http.Request, err error) {
	renderError(w, r, h.logger, h.development, err)
}

// Signup handles POST /api/v1/users/signup.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, r, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		h.error(w, r, err)
		return
	}

	view, err := h.svc.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Age:      req.Age,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.logger.Info("user_signed_up", "user_id", view.ID)

	writeSuccess(w, http.StatusCreated, "Done signup", view)
}

// Login handles POST /api/v1/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, r, apperr.BadRequest("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		h.error(w, r, err)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", result.User.ID)

	writeSuccess(w, http.StatusOK, "Done login", result)
}

// Update handles PATCH /api/v1/users.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, r, apperr.BadRequest("Invalid request body"))
		return
	}

	view, err := h.svc.UpdateLoggedInUser(r.Context(), auth.UserIDFromContext(r.Context()), service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User update", view)
}

// Delete handles DELETE /api/v1/users.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

// Get handles GET /api/v1/users.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "user get successfully", view)
}
