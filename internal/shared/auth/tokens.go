package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the verified payload of a bearer token.
type Claims struct {
	Sub       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is a signed token and its expiry.
type Token struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	Access  Token `json:"access"`
	Refresh Token `json:"refresh"`
}

// Issuer signs and verifies HS256 tokens. Access and refresh tokens share
// the secret and structure and differ only in lifetime.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer constructs an Issuer. now may be nil.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: now}
}

// Pair issues an access and a refresh token for userID.
func (i *Issuer) Pair(userID string) (TokenPair, error) {
	access, err := i.Sign(userID, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.Sign(userID, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Sign issues a token for userID valid for ttl.
func (i *Issuer) Sign(userID string, ttl time.Duration) (Token, error) {
	if strings.TrimSpace(userID) == "" {
		return Token{}, errors.New("subject is required")
	}
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, Expires: exp}, nil
}

// Parse verifies signature and expiry. It returns ErrTokenExpired for an
// otherwise valid token past its expiry and ErrInvalidToken for everything else.
func (i *Issuer) Parse(token string) (Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{Sub: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// VerifyToken satisfies the bearer middleware's verifier contract.
func (i *Issuer) VerifyToken(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	claims, err := i.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return "", apierr.Unauthorized("Token expired")
		}
		return "", apierr.Unauthorized("Invalid token")
	}
	return claims.Sub, nil
}
