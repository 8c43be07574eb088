package health_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vladislavdragonenkov/orders/internal/health"
)

func TestHandler_AllHealthy(t *testing.T) {
	handler := health.NewHandler("test")
	handler.RegisterChecker("storage", health.NewSimpleChecker("storage", func() error {
		return nil
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var response health.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if response.Status != health.StatusHealthy {
		t.Fatalf("expected healthy, got %s", response.Status)
	}
	if response.Version != "test" {
		t.Fatalf("expected version test, got %s", response.Version)
	}
	if _, ok := response.Checks["storage"]; !ok {
		t.Fatal("expected storage check in response")
	}
}

func TestHandler_UnhealthyComponent(t *testing.T) {
	handler := health.NewHandler("test")
	handler.RegisterChecker("postgres", health.NewSimpleChecker("postgres", func() error {
		return errors.New("connection refused")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}

	var response health.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if response.Status != health.StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", response.Status)
	}
	if response.Checks["postgres"].Message != "connection refused" {
		t.Fatalf("expected check message, got %q", response.Checks["postgres"].Message)
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := health.NewHandler("test")

	recorder := httptest.NewRecorder()
	handler.ReadinessHandler(recorder, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 with no checkers, got %d", recorder.Code)
	}

	handler.RegisterChecker("postgres", health.NewSimpleChecker("postgres", func() error {
		return errors.New("down")
	}))

	recorder = httptest.NewRecorder()
	handler.ReadinessHandler(recorder, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with failing checker, got %d", recorder.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	recorder := httptest.NewRecorder()
	health.LivenessHandler(recorder, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if recorder.Body.String() != "ok" {
		t.Fatalf("expected body ok, got %q", recorder.Body.String())
	}
}
