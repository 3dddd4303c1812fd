package db

import (
	"context"
	"errors"

	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
)

// ErrUserNotFound is returned by updates and deletes of an unknown email
var ErrUserNotFound = errors.New("user not found")

// UserStore defines the interface for user directory operations.
// Both the TableStore-backed db.DB and postgres.DB implement this interface.
// Emails are matched case-insensitively.
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	// GetUserByEmail returns nil, nil when no user matches
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	InsertUser(ctx context.Context, user model.User) error
	UpdateUserRole(ctx context.Context, email string, role model.Role) error
	UpdateLastLogin(ctx context.Context, email string, at string) error
	DeleteUser(ctx context.Context, email string) error
}
