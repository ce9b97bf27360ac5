package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoIdentity writes the bound identity's username, or "anonymous".
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		_, _ = io.WriteString(w, "anonymous")
		return
	}
	_, _ = io.WriteString(w, id.Username)
})

func TestRequireAuth(t *testing.T) {
	clock := newFakeClock()
	ts := newTestTokenService(t, clock)
	token, err := ts.Generate(Identity{ID: 3, Username: "carol"})
	require.NoError(t, err)

	expiredTS, err := NewTokenService(testSecret, WithClock(clock.Now), WithTTL(time.Second))
	require.NoError(t, err)
	shortLived, err := expiredTS.Generate(Identity{ID: 3, Username: "carol"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		advance    time.Duration
		wantStatus int
		wantBody   string
	}{
		{"valid bearer token", "Bearer " + token, 0, http.StatusOK, "carol"},
		{"scheme is case-insensitive", "bearer " + token, 0, http.StatusOK, "carol"},
		{"missing header", "", 0, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, 0, http.StatusUnauthorized, ""},
		{"scheme only", "Bearer", 0, http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", 0, http.StatusUnauthorized, ""},
		{"expired token", "Bearer " + shortLived, 2 * time.Second, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *clock
			c.Advance(tt.advance)
			validator, err := NewTokenService(testSecret, WithClock(c.Now))
			require.NoError(t, err)

			h := RequireAuth(validator, DefaultHeader, discardLogger())(echoIdentity)

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				return
			}

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRequireAuth_CustomHeader(t *testing.T) {
	ts := newTestTokenService(t, newFakeClock())
	token, err := ts.Generate(Identity{ID: 9, Username: "dave"})
	require.NoError(t, err)

	h := RequireAuth(ts, HeaderConfig{Name: "X-Access-Token", Scheme: "JWT"}, discardLogger())(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Access-Token", "JWT "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dave", rec.Body.String())

	// The default header is ignored once a custom one is configured.
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)
}
