package authclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = w.Write([]byte(`{"user":{"id":"user-42","email":"a@b.c"}}`))
		case "Bearer expired":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"message":"Token expired"}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "Bearer slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"user":{"id":"late"}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"message":"Invalid token"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func unauthorizedMessage(t *testing.T, err error) string {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", apiErr.Status)
	}
	return apiErr.Message
}

func TestVerifyTokenReturnsUserID(t *testing.T) {
	srv := newAuthServer(t)
	v := New(srv.URL+"/", time.Second)
	id, err := v.VerifyToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if id != "user-42" {
		t.Fatalf("expected user-42, got %q", id)
	}
}

func TestVerifyTokenPropagatesAuthMessage(t *testing.T) {
	srv := newAuthServer(t)
	v := New(srv.URL, time.Second)
	_, err := v.VerifyToken(context.Background(), "expired")
	if msg := unauthorizedMessage(t, err); msg != "Token expired" {
		t.Fatalf("expected Token expired, got %q", msg)
	}
	_, err = v.VerifyToken(context.Background(), "garbage")
	if msg := unauthorizedMessage(t, err); msg != "Invalid token" {
		t.Fatalf("expected Invalid token, got %q", msg)
	}
}

func TestVerifyTokenMapsOtherFailures(t *testing.T) {
	srv := newAuthServer(t)
	v := New(srv.URL, 50*time.Millisecond)
	for _, token := range []string{"broken", "slow"} {
		_, err := v.VerifyToken(context.Background(), token)
		if msg := unauthorizedMessage(t, err); msg != "Please authenticate" {
			t.Fatalf("%s: expected Please authenticate, got %q", token, msg)
		}
	}

	down := New("http://127.0.0.1:1", time.Second)
	_, err := down.VerifyToken(context.Background(), "good")
	if msg := unauthorizedMessage(t, err); msg != "Please authenticate" {
		t.Fatalf("expected Please authenticate, got %q", msg)
	}
}
