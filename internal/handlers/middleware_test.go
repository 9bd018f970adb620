package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestID(t *testing.T) {
	_, srv := setupHTTP(t)

	rec := do(t, srv, http.MethodGet, "/health", "")
	if id := rec.Header().Get("X-Request-ID"); len(id) != 36 {
		t.Errorf("expected generated uuid request id, got %q", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if id := rec.Header().Get("X-Request-ID"); id != "abc-123" {
		t.Errorf("expected propagated request id, got %q", id)
	}
}

func TestRecover(t *testing.T) {
	var seen string
	handler := RequestID(Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if seen == "" {
		t.Error("expected request id in context")
	}
}

func TestInstrument_RecordsMetrics(t *testing.T) {
	h, srv := setupHTTP(t)

	do(t, srv, http.MethodGet, "/tasks", "")
	do(t, srv, http.MethodGet, "/tasks/99", "")
	do(t, srv, http.MethodGet, "/tasks/98", "")

	if got := testutil.ToFloat64(h.Metrics.RequestCounter("GET", "/tasks", 200)); got != 1 {
		t.Errorf("expected 1 list request, got %v", got)
	}
	if got := testutil.ToFloat64(h.Metrics.RequestCounter("GET", "/tasks/{id}", 404)); got != 2 {
		t.Errorf("expected 2 not-found requests, got %v", got)
	}

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "task_api_http_requests_total") {
		t.Errorf("metrics endpoint missing request counter: %d", rec.Code)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/":          "/",
		"/health":    "/health",
		"/tasks":     "/tasks",
		"/tasks/":    "/tasks",
		"/tasks/123": "/tasks/{id}",
		"/ws":        "/ws",
		"/favicon":   "other",
	}
	for path, want := range tests {
		if got := routeLabel(path); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestCORS(t *testing.T) {
	_, srv := setupHTTP(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://frontend.test")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected Access-Control-Allow-Origin header")
	}
}
