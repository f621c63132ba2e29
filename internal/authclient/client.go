// Package authclient verifies bearer tokens against a remote auth service.
package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

const (
	DefaultTimeout = 5 * time.Second
	mePath         = "/api/auth/me"
	maxBody        = 1 << 16
)

// Verifier implements middleware.TokenVerifier by calling the auth service's
// /api/auth/me endpoint with the caller's token. It does not retry.
type Verifier struct {
	BaseURL string
	Timeout time.Duration
	// Base is the underlying transport; nil means http.DefaultTransport.
	Base http.RoundTripper
}

func New(baseURL string, timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Verifier{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: timeout}
}

type meResponse struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (v *Verifier) client(token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: v.Base},
		Timeout:   timeout,
	}
}

// VerifyToken returns the user ID the auth service resolves token to.
func (v *Verifier) VerifyToken(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(v.BaseURL, "/")+mePath, nil)
	if err != nil {
		return "", apierr.Wrap(http.StatusUnauthorized, "Please authenticate", err)
	}
	resp, err := v.client(token).Do(req)
	if err != nil {
		telemetry.Warn("authclient.request_failed", map[string]any{"error": err.Error()})
		return "", apierr.Wrap(http.StatusUnauthorized, "Please authenticate", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", apierr.Wrap(http.StatusUnauthorized, "Please authenticate", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var me meResponse
		if err := json.Unmarshal(body, &me); err != nil || me.User.ID == "" {
			return "", apierr.Unauthorized("Please authenticate")
		}
		return me.User.ID, nil
	case http.StatusUnauthorized:
		var e errorResponse
		if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
			return "", apierr.Unauthorized(e.Message)
		}
		return "", apierr.Unauthorized("Please authenticate")
	default:
		telemetry.Warn("authclient.unexpected_status", map[string]any{"status": resp.StatusCode})
		return "", apierr.Wrap(http.StatusUnauthorized, "Please authenticate", fmt.Errorf("auth service status %d", resp.StatusCode))
	}
}
