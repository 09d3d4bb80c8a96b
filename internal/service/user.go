// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notevault/notevault/internal/apperr"
	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/crypto"
	"github.com/notevault/notevault/internal/metrics"
	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
)

// UserStore is the persistence surface the user service depends on.
// *repository.Repository satisfies it; tests substitute in-memory fakes.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	UpdateUser(ctx context.Context, id string, update repository.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService owns the identity lifecycle: signup, login, self-read,
// self-update and self-delete, including the PII encryption lifecycle.
type UserService struct {
	users     UserStore
	codec     *crypto.Codec
	jwtSecret []byte
	tokenTTL  time.Duration
	metrics   metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, codec *crypto.Codec, jwtSecret []byte, tokenTTL time.Duration, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		users:     users,
		codec:     codec,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		metrics:   recorder,
	}
}

// UserView is the outward-facing projection of a user.
// Phone is the decrypted number, nil if never set. No password field exists.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResult carries the user view plus a session token.
type LoginResult struct {
	User  *UserView `json:"user"`
	Token string    `json:"token"`
}

// view projects a stored user, decrypting the phone envelope.
func (s *UserService) view(user *model.User) (*UserView, error) {
	v := &UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Phone != "" {
		phone, err := s.codec.Decrypt(user.Phone)
		if err != nil {
			return nil, fmt.Errorf("decrypt phone: %w", err)
		}
		v.Phone = &phone
	}
	return v, nil
}

// SignupInput defines input for creating an account. Shape validation
// (lengths, age bounds, required-ness) has already happened upstream.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Age      int
}

// Signup registers a new user. The email must be unique; the password is
// hashed and the phone encrypted before anything is persisted.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*UserView, error) {
	email := strings.TrimSpace(input.Email)

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("Email exist")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	envelope, err := s.codec.Encrypt(input.Phone)
	if err != nil {
		return nil, fmt.Errorf("encrypt phone: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Password:  hash,
		Phone:     envelope,
		Age:       input.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// The unique constraint closes the check-then-create window.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Conflict("Email exist")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserSignup()

	return s.view(user)
}

// Login verifies credentials and issues a session token. A missing account
// and a bad password share the same caller-visible phrasing but remain
// distinct failure classes.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	view, err := s.view(user)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserLogin()

	return &LoginResult{User: view, Token: token}, nil
}

// UpdateUserInput defines input for self-update. Nil means "not provided".
// Password is carried only so the rejection rule can fire.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
}

// UpdateLoggedInUser applies a partial self-update. Only fields that differ
// from the stored values are written; a phone change is detected by
// decrypting the current envelope and comparing plaintexts.
func (s *UserService) UpdateLoggedInUser(ctx context.Context, requesterID string, input UpdateUserInput) (*UserView, error) {
	if input.Password != nil {
		return nil, apperr.BadRequest("Password update is not allowed here")
	}

	user, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Email != nil && *input.Email != user.Email {
		taken, err := s.users.EmailTaken(ctx, *input.Email, requesterID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, apperr.Conflict("Email already exists")
		}
	}

	var update repository.UserUpdate

	if input.Name != nil && *input.Name != user.Name && len(*input.Name) > 2 {
		update.Name = input.Name
	}
	if input.Email != nil {
		update.Email = input.Email
	}
	if input.Phone != nil && *input.Phone != "" {
		current := ""
		if user.Phone != "" {
			current, err = s.codec.Decrypt(user.Phone)
			if err != nil {
				return nil, fmt.Errorf("decrypt phone: %w", err)
			}
		}
		if *input.Phone != current {
			envelope, err := s.codec.Encrypt(*input.Phone)
			if err != nil {
				return nil, fmt.Errorf("encrypt phone: %w", err)
			}
			update.Phone = &envelope
		}
	}

	if update.Name == nil && update.Email == nil && update.Phone == nil {
		// Nothing differs; skip the write entirely.
		return s.view(user)
	}

	updated, err := s.users.UpdateUser(ctx, requesterID, update)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return s.view(updated)
}

// DeleteUser removes the requester's own account.
func (s *UserService) DeleteUser(ctx context.Context, requesterID string) error {
	if _, err := s.users.GetUserByID(ctx, requesterID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.users.DeleteUser(ctx, requesterID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

// GetUser returns the requester's own profile with the phone decrypted.
func (s *UserService) GetUser(ctx context.Context, requesterID string) (*UserView, error) {
	user, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.view(user)
}
