package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCheckAllReportsEachService(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	results := CheckAll(context.Background(), up.Client(), []Target{
		{Name: "template-service", BaseURL: down.URL},
		{Name: "auth-service", BaseURL: up.URL + "/"},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "auth-service" || !results[0].Healthy {
		t.Fatalf("expected auth-service up, got %+v", results[0])
	}
	if results[1].Healthy || results[1].Status != http.StatusServiceUnavailable {
		t.Fatalf("expected template-service down, got %+v", results[1])
	}
	if AllHealthy(results) {
		t.Fatalf("expected AllHealthy to be false")
	}
	if !strings.Contains(results[1].String(), "DOWN") {
		t.Fatalf("unexpected line %q", results[1].String())
	}
}

func TestCheckAllUnreachable(t *testing.T) {
	results := CheckAll(context.Background(), nil, []Target{{Name: "auth-service", BaseURL: "http://127.0.0.1:1"}})
	if results[0].Healthy || results[0].Err == nil {
		t.Fatalf("expected transport error, got %+v", results[0])
	}
}

func TestStatusPayloads(t *testing.T) {
	s := NewService("auth-service")
	if s.Status()["status"] != "ok" {
		t.Fatalf("unexpected status payload")
	}
	if s.ServiceStatus()["service"] != "auth-service" {
		t.Fatalf("unexpected service payload")
	}
}
