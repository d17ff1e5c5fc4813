package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Memory keeps one token bucket per key. Buckets hold limit tokens and
// refill at limit per window.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	refill  rate.Limit // tokens per second
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewMemory(limit int, window time.Duration) (*Memory, error) {
	if err := checkConfig(limit, window); err != nil {
		return nil, err
	}
	return &Memory{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		refill:  rate.Limit(float64(limit) / window.Seconds()),
		now:     time.Now,
	}, nil
}

func (m *Memory) Allow(_ context.Context, key string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(m.refill, m.limit)}
		m.buckets[key] = b
	}
	b.seen = now

	allowed := b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)
	info := Info{
		Limit:     m.limit,
		Remaining: max(int(math.Floor(tokens)), 0),
		Allowed:   allowed,
	}
	// Time until the next whole token is available.
	wait := time.Duration((1 - (tokens - math.Floor(tokens))) * float64(time.Second) / float64(m.refill))
	info.ResetAt = now.Add(wait)
	return info, nil
}

// Cleanup drops buckets idle for longer than the window. A dropped bucket
// would have refilled completely anyway.
func (m *Memory) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.window)
	n := 0
	for key, b := range m.buckets {
		if b.seen.Before(cutoff) {
			delete(m.buckets, key)
			n++
		}
	}
	return n
}

// Run calls Cleanup every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Cleanup()
		}
	}
}
