package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CiviAI/internal/config"
	"CiviAI/internal/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		ChatBackend:    "none",
		StaticDir:      t.TempDir(),
		ChatRateLimit:  1,
		ChatRateWindow: time.Minute,
	}
	limiter, err := ratelimit.NewMemory(cfg.ChatRateLimit, cfg.ChatRateWindow)
	require.NoError(t, err)

	logger := zerolog.Nop()
	router := mux.NewRouter()
	require.NoError(t, HandleList(router, cfg, limiter, &logger))
	return router
}

func TestHandleListRoutes(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodPost, "/api/tools/beam/calc", `{"support":"simply-supported","load":"udl","span_m":6,"load_magnitude":20}`, http.StatusOK},
		{http.MethodPost, "/api/tools/beam/calc", `{"support":"fixed","load":"udl","span_m":6,"load_magnitude":20}`, http.StatusUnprocessableEntity},
		{http.MethodPost, "/api/tools/material/calc", `{"structure_type":"slab","length":5,"width":4,"thickness_mm":150}`, http.StatusOK},
		{http.MethodPost, "/api/tools/soil/calc", `{"soil_type":"clayey","plate_load_kpa":100,"footing_width_m":2}`, http.StatusOK},
		{http.MethodPost, "/api/tools/loads/calc", `{"dead_kn":10}`, http.StatusOK},
		{http.MethodPost, "/api/generate-report", `{"projectTitle":"Bridge","projectType":"Bridge"}`, http.StatusOK},
		{http.MethodGet, "/api/is-code/codes", "", http.StatusOK},
		{http.MethodPost, "/api/is-code", `{"isCode":"IS:456","topic":"beam"}`, http.StatusOK},
		{http.MethodGet, "/api/version", "", http.StatusOK},
		{http.MethodGet, "/api/tools/beam/calc", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestChatRouteRateLimited(t *testing.T) {
	router := newRouter(t)
	body := `{"messages":[{"role":"user","content":"What is IS 456?"}]}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "no backend configured")
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestNewLimiterRedisClosesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr(), ChatRateLimit: 2, ChatRateWindow: time.Minute}
	logger := zerolog.Nop()

	limiter, closeLimiter, err := newLimiter(context.Background(), cfg, &logger)
	require.NoError(t, err)
	require.IsType(t, &ratelimit.Redis{}, limiter)

	info, err := limiter.Allow(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, info.Allowed)

	require.NoError(t, closeLimiter())
	_, err = limiter.Allow(context.Background(), "203.0.113.9")
	assert.Error(t, err, "client is closed")
}

func TestNewLimiterFallsBackToMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	logger := zerolog.Nop()
	for _, url := range []string{"", "redis://" + addr} {
		cfg := &config.Config{RedisURL: url, ChatRateLimit: 2, ChatRateWindow: time.Minute}
		limiter, closeLimiter, err := newLimiter(ctx, cfg, &logger)
		require.NoError(t, err)
		assert.IsType(t, &ratelimit.Memory{}, limiter)
		assert.NoError(t, closeLimiter())
	}
}
