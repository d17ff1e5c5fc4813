package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow keeps one sorted-set member per accepted request, scored by
// its timestamp in nanoseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl_ms = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, ttl_ms)
	return {1, current + 1}
end
return {0, current}
`)

// Redis is a sliding window limiter shared by every instance using the
// same Redis database.
type Redis struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
	seq    func() string
}

func NewRedis(client redis.UniversalClient, limit int, window time.Duration, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.Join(errConfig, errors.New("redis client is required"))
	}
	if err := checkConfig(limit, window); err != nil {
		return nil, err
	}
	return &Redis{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		now:    time.Now,
		seq:    uuid.NewString,
	}, nil
}

func (r *Redis) Allow(ctx context.Context, key string) (Info, error) {
	now := r.now()
	res, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixNano(),
		now.Add(-r.window).UnixNano(),
		r.limit,
		r.window.Milliseconds(),
		r.seq(),
	).Int64Slice()
	if err != nil {
		return Info{}, fmt.Errorf("redis rate limit check: %w", err)
	}
	if len(res) != 2 {
		return Info{}, fmt.Errorf("redis rate limit check: unexpected result %v", res)
	}
	return Info{
		Limit:     r.limit,
		Remaining: max(r.limit-int(res[1]), 0),
		ResetAt:   now.Add(r.window),
		Allowed:   res[0] == 1,
	}, nil
}
