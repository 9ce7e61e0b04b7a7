package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/metrics"
	"github.com/hitoshi/livsmedel/internal/middleware"
)

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_OK(t *testing.T) {
	w := httptest.NewRecorder()
	HealthHandler(nil)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", w.Body.String(), "ok")
	}
}

func TestHealthHandler_CheckerFailure(t *testing.T) {
	w := httptest.NewRecorder()
	HealthHandler(&mockHealthChecker{err: errors.New("db down")})(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestNewRouter_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	registry := browse.NewRegistry(browse.SessionDeps{Catalog: &mockCatalog{}, Logger: logger}, browse.SessionConfig{}, browse.RegistryConfig{}, collector)
	t.Cleanup(registry.Stop)

	router := NewRouter(&RouterDeps{
		Logger:            logger,
		Sessions:          registry,
		HealthChecker:     &mockHealthChecker{},
		MetricsHandler:    metrics.Handler(reg),
		StatusRecorder:    collector,
		CORSAllowedOrigin: "http://localhost:3000",
	})

	w := doRequest(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}

	createSession(t, router)

	w = doRequest(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, name := range []string{"livsmedel_http_responses_total", "livsmedel_active_sessions 1"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output should contain %q", name)
		}
	}
}

func TestNewRouter_AppliesSecurityHeadersAndCORS(t *testing.T) {
	router := newTestRouter(t, &mockCatalog{})

	w := doRequest(t, router, http.MethodGet, "/api/sessions/unknown", "")

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}

func TestNewRouter_NoStoreOnlyOnSessions(t *testing.T) {
	router := newTestRouter(t, &mockCatalog{})

	w := doRequest(t, router, http.MethodGet, "/api/sessions/unknown", "")
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("/api/sessions の Cache-Control = %q, want %q", got, "no-store")
	}

	w = doRequest(t, router, http.MethodGet, "/health", "")
	if got := w.Header().Get("Cache-Control"); got != "" {
		t.Errorf("/health の Cache-Control = %q, want empty", got)
	}
}

func TestNewRouter_PreflightReturns204(t *testing.T) {
	router := newTestRouter(t, &mockCatalog{})

	w := doRequest(t, router, http.MethodOptions, "/api/sessions", "")

	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestNewRouter_RateLimitAppliesToSessionsOnly(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	registry := browse.NewRegistry(browse.SessionDeps{Catalog: &mockCatalog{}, Logger: logger}, browse.SessionConfig{}, browse.RegistryConfig{}, nil)
	t.Cleanup(registry.Stop)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:            1,
		Burst:           1,
		CleanupInterval: time.Minute,
	}, logger)
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		Logger:            logger,
		Sessions:          registry,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
	})

	doRequest(t, router, http.MethodGet, "/api/sessions/unknown", "")
	w := doRequest(t, router, http.MethodGet, "/api/sessions/unknown", "")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("2回目のリクエスト status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// ヘルスチェックはレート制限の対象外
	for i := 0; i < 3; i++ {
		if w := doRequest(t, router, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
			t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
		}
	}
}

func TestNewRouter_UnknownRoute_Returns404Or405(t *testing.T) {
	router := newTestRouter(t, &mockCatalog{})

	w := doRequest(t, router, http.MethodPatch, "/api/sessions/x/unknown", "")

	// 存在しないルートには404か405が返ること
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 404 or 405", w.Code)
	}
}
