package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/suncrest/suncrest-backend/internal/apikeys/domain"
)

const defaultRateLimitPerMin = 60

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create mints a new key for a tenant and returns the raw secret. The
// secret is not recoverable afterwards; only its hash is stored.
func (r *APIKeyRepository) Create(ctx context.Context, tenantID, name string, rateLimitPerMin int) (*domain.APIKey, string, error) {
	if tenantID == "" || name == "" {
		return nil, "", fmt.Errorf("tenant id and name required")
	}
	if rateLimitPerMin <= 0 {
		rateLimitPerMin = defaultRateLimitPerMin
	}

	raw, err := newRawKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate key: %w", err)
	}

	key := &domain.APIKey{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		Name:            name,
		KeyHash:         domain.HashKey(raw),
		Prefix:          raw[:11],
		RateLimitPerMin: rateLimitPerMin,
		Active:          true,
	}

	const q = `
INSERT INTO api_keys (id, tenant_id, name, key_hash, prefix, rate_limit_per_min, active)
VALUES ($1, $2, $3, $4, $5, $6, TRUE)
RETURNING created_at;
`
	err = r.db.QueryRowContext(ctx, q,
		key.ID, key.TenantID, key.Name, key.KeyHash, key.Prefix, key.RateLimitPerMin,
	).Scan(&key.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("create api key: %w", err)
	}

	return key, raw, nil
}

// GetByHash looks up an active or revoked key by the digest of the raw
// secret presented by a caller.
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	const q = `
SELECT id, tenant_id, name, key_hash, prefix, rate_limit_per_min, active, created_at, last_used_at
FROM api_keys
WHERE key_hash = $1;
`
	var key domain.APIKey
	err := r.db.QueryRowContext(ctx, q, keyHash).Scan(
		&key.ID, &key.TenantID, &key.Name, &key.KeyHash, &key.Prefix,
		&key.RateLimitPerMin, &key.Active, &key.CreatedAt, &key.LastUsedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.APIKey, error) {
	const q = `
SELECT id, tenant_id, name, key_hash, prefix, rate_limit_per_min, active, created_at, last_used_at
FROM api_keys
WHERE tenant_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	out := make([]domain.APIKey, 0, 8)
	for rows.Next() {
		var key domain.APIKey
		if err := rows.Scan(
			&key.ID, &key.TenantID, &key.Name, &key.KeyHash, &key.Prefix,
			&key.RateLimitPerMin, &key.Active, &key.CreatedAt, &key.LastUsedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

// Revoke deactivates a key; revoked keys fail authentication but remain
// listed for audit purposes.
func (r *APIKeyRepository) Revoke(ctx context.Context, tenantID, id string) error {
	const q = `
UPDATE api_keys
SET active = FALSE
WHERE tenant_id = $1 AND id = $2 AND active = TRUE;
`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}

// TouchLastUsed records key activity; failures are non-fatal for the
// request path, so the caller may ignore the error.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	const q = `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1;`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func newRawKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sk_" + hex.EncodeToString(b), nil
}
