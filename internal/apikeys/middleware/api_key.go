package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apikeys/domain"
)

// KeyStore is the lookup slice of the API key repository the middleware
// needs.
type KeyStore interface {
	GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}

// APIKeyMiddleware authenticates requests with the X-API-Key header and
// stamps the tenant identity into the request context.
func APIKeyMiddleware(store KeyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-API-Key")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing API key"})
			return
		}

		key, err := store.GetByHash(c.Request.Context(), domain.HashKey(raw))
		if err != nil {
			if !errors.Is(err, domain.ErrAPIKeyNotFound) {
				log.Printf("[auth] api key lookup failed: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: invalid API key"})
			return
		}
		if !key.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: API key revoked"})
			return
		}

		c.Set("tenant_id", key.TenantID)
		c.Set("api_key_id", key.ID)
		c.Set("rate_limit_per_min", key.RateLimitPerMin)

		if err := store.TouchLastUsed(c.Request.Context(), key.ID); err != nil {
			log.Printf("[auth] failed to record key usage: %v", err)
		}

		c.Next()
	}
}
