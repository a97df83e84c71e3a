package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/domain"
	"taskboard/internal/store"
)

// ErrInvalidCredentials is returned when a login fails. Callers must not
// distinguish an unknown username from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

func (e Engine) RegisterUser(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.User{}, ValidationError{Field: "username", Message: "username is required"}
	}
	if email == "" {
		return domain.User{}, ValidationError{Field: "email", Message: "email is required"}
	}
	if len(password) < 8 {
		return domain.User{}, ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if _, err := e.Store.GetUserByUsernameOrEmail(ctx, username, email); err == nil {
		return domain.User{}, ValidationError{Field: "username", Message: "username or email already taken"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	ts := e.now().UTC().Format(time.RFC3339)
	u := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := e.Store.InsertUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (e Engine) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	u, err := e.Store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (e Engine) GetUser(ctx context.Context, id string) (domain.User, error) {
	return e.Store.GetUser(ctx, id)
}

func (e Engine) ListUsers(ctx context.Context) ([]domain.User, error) {
	return e.Store.ListUsers(ctx)
}

// CheckUsername reports whether a username is already taken.
func (e Engine) CheckUsername(ctx context.Context, username string) (bool, error) {
	_, err := e.Store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
