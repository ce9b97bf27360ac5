package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, logger *slog.Logger, m *Metrics) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(Logger(logger))
	r.Use(m.Middleware)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func TestLogger_RecordsRouteAndStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	router := newTestRouter(t, logger, NewMetrics())

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	router.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, "route=/users/{id}")
	assert.Contains(t, line, "path=/users/42")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "bytes=5")
	assert.NotContains(t, line, "secret-token")
}

func TestLogger_ServerErrorsLoggedAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	router := newTestRouter(t, logger, NewMetrics())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status=500")
}

func TestMetrics_CountsByRoute(t *testing.T) {
	m := NewMetrics()
	router := newTestRouter(t, slog.New(slog.NewTextHandler(io.Discard, nil)), m)

	for _, path := range []string{"/users/1", "/users/2", "/users/3"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/users/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/boom", "500")))
}

func TestMetrics_RecordLogin(t *testing.T) {
	m := NewMetrics()

	m.RecordLogin("success")
	m.RecordLogin("failure")
	m.RecordLogin("failure")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("failure")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordLogin("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `auth_login_attempts_total{outcome="success"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
