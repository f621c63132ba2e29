package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/auth"
)

func newAuthRouter(issuer *auth.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(issuer))
	router.GET("/api/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})
	return router
}

func decodeMessage(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != resp.Code {
		t.Fatalf("body code %d does not match status %d", body.Code, resp.Code)
	}
	return body.Message
}

func TestAuthRequiresBearer(t *testing.T) {
	router := newAuthRouter(auth.NewIssuer("secret", time.Minute, time.Hour, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if msg := decodeMessage(t, resp); msg != "Please authenticate" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAuthDistinguishesExpiredAndInvalid(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Minute, time.Hour, nil)
	router := newAuthRouter(issuer)

	old := auth.NewIssuer("secret", time.Minute, time.Hour, func() time.Time { return time.Now().Add(-time.Hour) })
	expired, err := old.Sign("user-1", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tests := []struct {
		token string
		want  string
	}{
		{token: expired.Token, want: "Token expired"},
		{token: "abc.def.ghi", want: "Invalid token"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.Code)
		}
		if msg := decodeMessage(t, resp); msg != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, msg)
		}
	}
}

func TestAuthSetsUserID(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Minute, time.Hour, nil)
	router := newAuthRouter(issuer)
	token, err := issuer.Sign("user-42", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["userId"] != "user-42" {
		t.Fatalf("unexpected user id %q", body["userId"])
	}
}

type stubVerifier struct{ calls int }

func (s *stubVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	s.calls++
	return "user-1", nil
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier := &stubVerifier{}
	router := gin.New()
	router.Use(Auth(verifier))
	router.OPTIONS("/api/documents/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/documents/123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if verifier.calls != 0 {
		t.Fatalf("expected verifier not to be called")
	}
}
