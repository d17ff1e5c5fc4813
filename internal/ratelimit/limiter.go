// Package ratelimit throttles requests per client key, in process or
// shared across instances through Redis.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Info, error)
}

// Info describes the limit state after a decision.
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

var errConfig = errors.New("invalid rate limit configuration")

func checkConfig(limit int, window time.Duration) error {
	if limit <= 0 {
		return errors.Join(errConfig, errors.New("limit must be greater than 0"))
	}
	if window <= 0 {
		return errors.Join(errConfig, errors.New("window must be greater than 0"))
	}
	return nil
}
