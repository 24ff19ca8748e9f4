package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrAPIKeyRevoked  = errors.New("api key has been revoked")
)

// APIKey is a tenant credential. Only the SHA-256 hash of the raw key
// is persisted; the raw key is shown once at creation time.
type APIKey struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	Name            string     `json:"name"`
	KeyHash         string     `json:"-"`
	Prefix          string     `json:"prefix"`
	RateLimitPerMin int        `json:"rate_limit_per_min"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty"`
}

// HashKey derives the stored digest for a raw API key.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
