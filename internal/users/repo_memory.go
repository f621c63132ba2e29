package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps users in process. It indexes by email and by reset token
// hash so lookups match the unique indexes of the database repos.
type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
	byReset map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:   map[string]User{},
		byEmail: map[string]string{},
		byReset: map[string]string{},
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email := NormalizeEmail(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[email]; taken {
		return ErrEmailTaken
	}
	user.Email = email
	r.users[user.ID] = user
	r.byEmail[email] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.lookup(ctx, func() (string, bool) { return userID, true })
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.lookup(ctx, func() (string, bool) {
		id, ok := r.byEmail[NormalizeEmail(email)]
		return id, ok
	})
}

// GetByResetToken finds the user holding tokenHash while it is unexpired at now.
func (r *MemoryRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (User, error) {
	u, err := r.lookup(ctx, func() (string, bool) {
		id, ok := r.byReset[tokenHash]
		return id, ok && tokenHash != ""
	})
	if err != nil {
		return User{}, err
	}
	if u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(now) {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	return r.update(ctx, userID, func(u *User) {
		delete(r.byReset, u.ResetPasswordToken)
		exp := expires
		u.ResetPasswordToken = tokenHash
		u.ResetPasswordExpires = &exp
		r.byReset[tokenHash] = u.ID
	})
}

// UpdatePassword also clears any pending reset token.
func (r *MemoryRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.update(ctx, userID, func(u *User) {
		delete(r.byReset, u.ResetPasswordToken)
		u.PasswordHash = passwordHash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpires = nil
	})
}

func (r *MemoryRepo) lookup(ctx context.Context, id func() (string, bool)) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := id()
	if !ok {
		return User{}, ErrNotFound
	}
	u, ok := r.users[key]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) update(ctx context.Context, userID string, mutate func(*User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	mutate(&u)
	u.UpdatedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}
