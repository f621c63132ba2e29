package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T, expose bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(nil)
	h := NewHandler(svc, expose)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"), middleware.Auth(svc.Tokens))
	return r
}

func doJSON(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRegisterLoginMeOverHTTP(t *testing.T) {
	r := newTestRouter(t, false)

	resp := doJSON(r, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Jane", "email": "jane@example.com", "password": "secret123",
	}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var reg struct {
		User   map[string]any `json:"user"`
		Tokens struct {
			Access struct {
				Token string `json:"token"`
			} `json:"access"`
			Refresh struct {
				Token string `json:"token"`
			} `json:"refresh"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, leaked := reg.User["password"]; leaked {
		t.Fatalf("password hash leaked in response")
	}
	if _, leaked := reg.User["PasswordHash"]; leaked {
		t.Fatalf("password hash leaked in response")
	}

	resp = doJSON(r, http.MethodGet, "/api/auth/me", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	resp = doJSON(r, http.MethodGet, "/api/auth/me", nil, reg.Tokens.Access.Token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var me struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &me)
	if me.User.Email != "jane@example.com" {
		t.Fatalf("unexpected me payload %s", resp.Body.String())
	}

	resp = doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{"email": "jane@example.com", "password": "nope12345"}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	resp = doJSON(r, http.MethodPost, "/api/auth/refresh-token", map[string]string{"refreshToken": reg.Tokens.Refresh.Token}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on refresh, got %d", resp.Code)
	}
}

func TestForgotPasswordExposesTokenOnlyWhenAllowed(t *testing.T) {
	for _, expose := range []bool{true, false} {
		r := newTestRouter(t, expose)
		resp := doJSON(r, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Jane", "email": "jane@example.com", "password": "secret123",
		}, "")
		if resp.Code != http.StatusCreated {
			t.Fatalf("register: %d", resp.Code)
		}
		resp = doJSON(r, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "jane@example.com"}, "")
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(resp.Body.Bytes(), &body)
		if body["message"] != "Password reset link sent to your email" {
			t.Fatalf("unexpected message %q", body["message"])
		}
		if (body["resetToken"] != "") != expose {
			t.Fatalf("expose=%v but resetToken=%q", expose, body["resetToken"])
		}
		if !expose {
			continue
		}
		resp = doJSON(r, http.MethodPost, "/api/auth/reset-password", map[string]string{"token": body["resetToken"], "password": "newpass123"}, "")
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 on reset, got %d: %s", resp.Code, resp.Body.String())
		}
	}
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	r := newTestRouter(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
