package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/doc-translator/backend/internal/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	svc := auth.NewJWTService("test-secret", time.Hour)
	token, err := svc.GenerateToken(3, "alice", "user")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + token, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.Claims
			h := AuthMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetClaims(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/job", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				require.NotNil(t, got)
				assert.Equal(t, int64(3), got.UserID)
			} else {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				assert.Nil(t, got)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole("admin")(okHandler)

	tests := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{name: "no claims", want: http.StatusUnauthorized},
		{name: "user", claims: &auth.Claims{Role: "user"}, want: http.StatusForbidden},
		{name: "admin", claims: &auth.Claims{Role: "admin"}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is far too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 2, time.Minute)
	rl.now = func() time.Time { return now }
	h := rl.Handler(okHandler)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222").Code, "port is ignored")

	rec := call("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111").Code, "other IPs are unaffected")

	status := rl.Status()
	assert.Equal(t, 2, status.Limit)
	assert.Len(t, status.Entries, 2)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111").Code, "window resets")

	rl.cleanup()
	assert.Len(t, rl.Status().Entries, 1)

	rl.Clear()
	assert.Empty(t, rl.Status().Entries)
}

func TestLogger_SilentPaths(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	status := http.StatusOK
	h := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	serve := func(method, path string) {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
	}

	serve(http.MethodGet, "/api/job")
	serve(http.MethodGet, "/api/health")
	assert.Equal(t, 0, logs.Len())

	serve(http.MethodPost, "/api/job/start")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "/api/job/start", entry.ContextMap()["path"])

	status = http.StatusConflict
	serve(http.MethodGet, "/api/job")
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)

	status = http.StatusInternalServerError
	serve(http.MethodGet, "/api/dictionary")
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)
}

func TestCORSOptions(t *testing.T) {
	wildcard := CORSOptions(nil)
	assert.Equal(t, []string{"*"}, wildcard.AllowedOrigins)
	assert.False(t, wildcard.AllowCredentials)

	fixed := CORSOptions([]string{"http://localhost:5173"})
	assert.True(t, fixed.AllowCredentials)
	assert.Contains(t, fixed.ExposedHeaders, "Content-Disposition")
}
