// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"strings"

	"github.com/notevault/notevault/internal/apperr"
)

// SignupRequest represents the request body for account creation.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Age      int    `json:"age"`
}

// Validate checks the shape of the signup payload. Field problems are
// collected into the structured extra so the caller sees all of them at once.
func (r *SignupRequest) Validate() error {
	problems := map[string]any{}

	if len(strings.TrimSpace(r.Name)) < 3 {
		problems["name"] = "must be at least 3 characters"
	}
	if !strings.Contains(r.Email, "@") {
		problems["email"] = "must be a valid email address"
	}
	if len(r.Password) < 6 {
		problems["password"] = "must be at least 6 characters"
	}
	if strings.TrimSpace(r.Phone) == "" {
		problems["phone"] = "is required"
	}
	if r.Age < 18 || r.Age > 60 {
		problems["age"] = "must be between 18 and 60"
	}

	if len(problems) > 0 {
		return apperr.BadRequest("Validation failed", problems)
	}
	return nil
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the shape of the login payload.
func (r *LoginRequest) Validate() error {
	problems := map[string]any{}

	if r.Email == "" {
		problems["email"] = "is required"
	}
	if r.Password == "" {
		problems["password"] = "is required"
	}

	if len(problems) > 0 {
		return apperr.BadRequest("Validation failed", problems)
	}
	return nil
}

// UpdateUserRequest represents the request body for a partial self-update.
// Nil means the field was not provided. Password is decoded only so the
// rejection rule downstream can fire.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
}
