package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already taken")
)

// Repo persists users. Emails are compared exactly; callers normalize them.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error
	// GetByResetToken returns the user holding tokenHash if it expires after now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (User, error)
	// UpdatePassword stores passwordHash and clears any pending reset token.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
