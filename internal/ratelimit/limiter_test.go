package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client), mr
}

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then blocks", func(t *testing.T) {
		limiter, _ := setupLimiter(t)

		for i := 0; i < 3; i++ {
			d := limiter.Allow(ctx, "tenant-1", 3)
			require.True(t, d.Allowed, "request %d should be allowed", i+1)
		}

		d := limiter.Allow(ctx, "tenant-1", 3)
		assert.False(t, d.Allowed)
		assert.Zero(t, d.Remaining)
		assert.Greater(t, d.RetryAfter.Seconds(), 0.0)
	})

	t.Run("remaining counts down", func(t *testing.T) {
		limiter, _ := setupLimiter(t)

		d := limiter.Allow(ctx, "tenant-1", 5)
		assert.Equal(t, 4, d.Remaining)
		d = limiter.Allow(ctx, "tenant-1", 5)
		assert.Equal(t, 3, d.Remaining)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		limiter, _ := setupLimiter(t)

		require.True(t, limiter.Allow(ctx, "tenant-1", 1).Allowed)
		assert.False(t, limiter.Allow(ctx, "tenant-1", 1).Allowed)
		assert.True(t, limiter.Allow(ctx, "tenant-2", 1).Allowed)
	})

	t.Run("zero limit disables limiting", func(t *testing.T) {
		limiter, _ := setupLimiter(t)

		for i := 0; i < 10; i++ {
			assert.True(t, limiter.Allow(ctx, "tenant-1", 0).Allowed)
		}
	})

	t.Run("falls back to local limiter when redis is down", func(t *testing.T) {
		limiter, mr := setupLimiter(t)
		mr.Close()

		d := limiter.Allow(ctx, "tenant-1", 60)
		assert.True(t, d.Allowed)
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limiter *Limiter, limit int) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set("tenant_id", "tenant-1")
			c.Set("rate_limit_per_min", limit)
		})
		r.Use(Middleware(limiter))
		r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
		return r
	}

	t.Run("returns 429 with Retry-After once exhausted", func(t *testing.T) {
		limiter, _ := setupLimiter(t)
		r := newRouter(limiter, 2)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("skips requests without tenant identity", func(t *testing.T) {
		limiter, _ := setupLimiter(t)
		r := gin.New()
		r.Use(Middleware(limiter))
		r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
