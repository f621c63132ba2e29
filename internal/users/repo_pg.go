package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sqlx.DB
}

type pgUser struct {
	ID                   string         `db:"id"`
	Name                 string         `db:"name"`
	Email                string         `db:"email"`
	PasswordHash         string         `db:"password_hash"`
	ResetPasswordToken   sql.NullString `db:"reset_password_token"`
	ResetPasswordExpires sql.NullTime   `db:"reset_password_expires"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (p pgUser) toUser() User {
	user := User{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.ResetPasswordToken.Valid {
		user.ResetPasswordToken = p.ResetPasswordToken.String
	}
	if p.ResetPasswordExpires.Valid {
		exp := p.ResetPasswordExpires.Time
		user.ResetPasswordExpires = &exp
	}
	return user
}

const selectUser = `
SELECT id, name, email, password_hash, reset_password_token, reset_password_expires, created_at, updated_at
FROM users`

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.get(ctx, selectUser+` WHERE id = $1 LIMIT 1`, userID)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.get(ctx, selectUser+` WHERE email = $1 LIMIT 1`, email)
}

func (r *PGRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	const query = `
UPDATE users
SET reset_password_token = $2, reset_password_expires = $3, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, tokenHash, expires.UTC())
	return affectedOrNotFound(res, err)
}

func (r *PGRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (User, error) {
	return r.get(ctx, selectUser+` WHERE reset_password_token = $1 AND reset_password_expires > $2 LIMIT 1`, tokenHash, now.UTC())
}

func (r *PGRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `
UPDATE users
SET password_hash = $2, reset_password_token = NULL, reset_password_expires = NULL, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, passwordHash)
	return affectedOrNotFound(res, err)
}

func (r *PGRepo) get(ctx context.Context, query string, args ...any) (User, error) {
	var row pgUser
	if err := r.DB.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return row.toUser(), nil
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
