package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newMemory(t *testing.T, limit int, window time.Duration) (*Memory, *clock) {
	t.Helper()
	m, err := NewMemory(limit, window)
	require.NoError(t, err)
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	m.now = c.now
	return m, c
}

func TestNewMemoryInvalidConfig(t *testing.T) {
	_, err := NewMemory(0, time.Minute)
	assert.ErrorIs(t, err, errConfig)
	_, err = NewMemory(20, 0)
	assert.ErrorIs(t, err, errConfig)
}

func TestMemoryAllow(t *testing.T) {
	m, c := newMemory(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := m.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, info.Allowed, "request %d", i)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	info, err := m.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.True(t, info.ResetAt.After(c.now()))

	other, err := m.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")

	// One token comes back every window/limit.
	c.advance(21 * time.Second)
	info, err = m.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestMemoryHighLimitStillLimits(t *testing.T) {
	// More requests than nanoseconds in the window.
	m, c := newMemory(t, 2000, time.Microsecond)
	assert.InDelta(t, 2e9, float64(m.refill), 1)

	ctx := context.Background()
	for i := 0; i < 2000; i++ {
		info, err := m.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, info.Allowed, "request %d", i)
	}
	info, err := m.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	c.advance(time.Microsecond)
	info, err = m.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestMemoryCleanup(t *testing.T) {
	m, c := newMemory(t, 5, time.Minute)
	ctx := context.Background()

	_, _ = m.Allow(ctx, "a")
	c.advance(30 * time.Second)
	_, _ = m.Allow(ctx, "b")
	c.advance(45 * time.Second)

	assert.Equal(t, 1, m.Cleanup())
	assert.Len(t, m.buckets, 1)
	assert.Contains(t, m.buckets, "b")
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewRedisInvalidConfig(t *testing.T) {
	client, _ := setupRedis(t)
	_, err := NewRedis(nil, 10, time.Minute, "rl:")
	assert.ErrorIs(t, err, errConfig)
	_, err = NewRedis(client, -1, time.Minute, "rl:")
	assert.ErrorIs(t, err, errConfig)
	_, err = NewRedis(client, 10, 0, "rl:")
	assert.ErrorIs(t, err, errConfig)
}

func TestRedisAllow(t *testing.T) {
	client, mr := setupRedis(t)
	r, err := NewRedis(client, 2, time.Minute, "rl:")
	require.NoError(t, err)
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	r.now = c.now
	ctx := context.Background()

	info, err := r.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)

	c.advance(time.Second)
	info, err = r.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	info, err = r.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, c.now().Add(time.Minute), info.ResetAt)

	assert.True(t, mr.Exists("rl:ip"))
	members, err := mr.ZMembers("rl:ip")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// The first request leaves the window after a minute.
	c.advance(time.Minute - 500*time.Millisecond)
	info, err = r.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, info.Allowed)

	// Idle keys expire one window after the last accepted request.
	assert.Equal(t, time.Minute, mr.TTL("rl:ip"))
	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists("rl:ip"))
}

func TestRedisAllowUnavailable(t *testing.T) {
	client, mr := setupRedis(t)
	r, err := NewRedis(client, 2, time.Minute, "rl:")
	require.NoError(t, err)
	mr.Close()

	_, err = r.Allow(context.Background(), "ip")
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req = httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientIP(req))
}

type failing struct{}

func (failing) Allow(context.Context, string) (Info, error) {
	return Info{}, errors.New("redis down")
}

func TestMiddleware(t *testing.T) {
	m, _ := newMemory(t, 1, time.Minute)
	calls := 0
	h := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"`+DeniedMessage+`"}`, rec.Body.String())
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 0)
	assert.Equal(t, 1, calls)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	called := false
	h := Middleware(failing{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
