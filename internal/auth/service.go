package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	sharedauth "github.com/MattyO101/Legalassist-MPV/internal/shared/auth"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/util"
	"github.com/MattyO101/Legalassist-MPV/internal/users"
)

const (
	resetTokenBytes = 32
	defaultResetTTL = 10 * time.Minute
)

// Service implements account registration, login and password recovery.
type Service struct {
	Users  users.Repo
	Tokens *sharedauth.Issuer
	Hasher Hasher
	Now    func() time.Time

	// ResetTTL bounds how long a reset token stays valid.
	ResetTTL time.Duration
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = users.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return AuthResponse{}, apierr.BadRequest(err.Error())
	}
	if _, err := s.Users.GetByEmail(ctx, req.Email); err == nil {
		return AuthResponse{}, apierr.BadRequest("Email already taken")
	} else if !errors.Is(err, users.ErrNotFound) {
		return AuthResponse{}, err
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return AuthResponse{}, apierr.Internal("Failed to hash password", err)
	}
	now := s.now()
	user := users.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return AuthResponse{}, apierr.BadRequest("Email already taken")
		}
		return AuthResponse{}, err
	}

	tokens, err := s.Tokens.Pair(user.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	telemetry.Info("auth.registered", map[string]any{"user_id": user.ID})
	return AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	req.Email = users.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return AuthResponse{}, apierr.BadRequest(err.Error())
	}
	user, err := s.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return AuthResponse{}, apierr.Unauthorized("Incorrect email or password")
		}
		return AuthResponse{}, err
	}
	if !s.Hasher.Verify(user.PasswordHash, req.Password) {
		return AuthResponse{}, apierr.Unauthorized("Incorrect email or password")
	}
	tokens, err := s.Tokens.Pair(user.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a valid refresh token for a new pair. Every failure is
// reported the same way.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResponse{}, apierr.BadRequest("Refresh token is required")
	}
	claims, err := s.Tokens.Parse(refreshToken)
	if err != nil {
		return AuthResponse{}, apierr.Unauthorized("Invalid refresh token")
	}
	user, err := s.Users.GetByID(ctx, claims.Sub)
	if err != nil {
		return AuthResponse{}, apierr.Unauthorized("Invalid refresh token")
	}
	tokens, err := s.Tokens.Pair(user.ID)
	if err != nil {
		return AuthResponse{}, apierr.Unauthorized("Invalid refresh token")
	}
	return AuthResponse{User: user, Tokens: tokens}, nil
}

// ForgotPassword stores the hash of a fresh reset token and returns the raw
// token. Delivering it is the caller's concern.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = users.NormalizeEmail(email)
	if email == "" {
		return "", apierr.BadRequest("Email is required")
	}
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", apierr.NotFound("No account found with that email address")
		}
		return "", err
	}

	token, err := util.RandomHex(resetTokenBytes)
	if err != nil {
		return "", apierr.Internal("Failed to generate reset token", err)
	}
	ttl := s.ResetTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	if err := s.Users.SetResetToken(ctx, user.ID, util.SHA256Hex(token), s.now().Add(ttl)); err != nil {
		return "", err
	}
	telemetry.Info("auth.reset_requested", map[string]any{"user_id": user.ID})
	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if strings.TrimSpace(req.Token) == "" || req.Password == "" {
		return apierr.BadRequest("Token and password are required")
	}
	user, err := s.Users.GetByResetToken(ctx, util.SHA256Hex(strings.TrimSpace(req.Token)), s.now())
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apierr.BadRequest("Invalid or expired reset token")
		}
		return err
	}
	if err := validatePassword(req.Password); err != nil {
		return apierr.BadRequest(err.Error())
	}
	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return apierr.Internal("Failed to hash password", err)
	}
	if err := s.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	telemetry.Info("auth.password_reset", map[string]any{"user_id": user.ID})
	return nil
}

// Me loads the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (users.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, apierr.Unauthorized("User not found")
		}
		return users.User{}, err
	}
	return user, nil
}
