package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestHandler_ServesMetrics はスクレイプでメトリクスが返ることを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCatalogRequest("list", 200, true, 10*time.Millisecond)
	c.SetActiveSessions(2)

	handler := Handler(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	for _, name := range []string{
		"livsmedel_catalog_requests_total",
		"livsmedel_catalog_latency_seconds",
		"livsmedel_active_sessions 2",
	} {
		if !strings.Contains(bodyStr, name) {
			t.Errorf("response should contain %s", name)
		}
	}
}

// TestHandler_EmptyRegistry は空のレジストリでも200を返すことを検証する。
func TestHandler_EmptyRegistry(t *testing.T) {
	handler := Handler(prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
