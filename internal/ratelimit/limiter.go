// Package ratelimit enforces per-tenant request quotas. The primary
// implementation counts requests in Redis fixed windows so limits hold
// across API replicas; a local token-bucket fallback covers Redis
// outages.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const counterKeyPrefix = "ratelimit:"

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key per minute window.
type Limiter struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		local:  make(map[string]*rate.Limiter),
	}
}

// Allow records one request against the key's current minute window and
// reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string, limitPerMin int) Decision {
	if limitPerMin <= 0 {
		return Decision{Allowed: true, Limit: limitPerMin}
	}

	now := time.Now()
	windowKey := fmt.Sprintf("%s%s:%d", counterKeyPrefix, key, now.Unix()/60)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[ratelimit] redis unavailable, using local limiter: %v", err)
		return l.allowLocal(key, limitPerMin)
	}

	count := int(incr.Val())
	if count > limitPerMin {
		return Decision{
			Allowed:    false,
			Limit:      limitPerMin,
			Remaining:  0,
			RetryAfter: windowRemainder(now),
		}
	}
	return Decision{
		Allowed:   true,
		Limit:     limitPerMin,
		Remaining: limitPerMin - count,
	}
}

// allowLocal approximates the quota with an in-process token bucket so
// a Redis outage degrades to per-replica limiting instead of an outage.
func (l *Limiter) allowLocal(key string, limitPerMin int) Decision {
	l.mu.Lock()
	lim, ok := l.local[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(limitPerMin)/60.0), limitPerMin)
		l.local[key] = lim
	}
	l.mu.Unlock()

	if !lim.Allow() {
		return Decision{
			Allowed:    false,
			Limit:      limitPerMin,
			RetryAfter: time.Second,
		}
	}
	return Decision{Allowed: true, Limit: limitPerMin, Remaining: int(lim.Tokens())}
}

func windowRemainder(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(now)
}
