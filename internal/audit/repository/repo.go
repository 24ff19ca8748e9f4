package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/suncrest/suncrest-backend/internal/audit/domain"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	const q = `
INSERT INTO audit_log (id, tenant_id, api_key_id, method, path, status, request_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at;
`
	err := r.db.QueryRowContext(ctx, q,
		entry.ID, entry.TenantID, entry.APIKeyID, entry.Method, entry.Path, entry.Status, entry.RequestID,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns a page of a tenant's audit trail, newest first.
func (r *AuditRepository) List(ctx context.Context, tenantID string, page, perPage int) ([]domain.Entry, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}

	var total int
	const countQ = `SELECT COUNT(*) FROM audit_log WHERE tenant_id = $1;`
	if err := r.db.QueryRowContext(ctx, countQ, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	const q = `
SELECT id, tenant_id, COALESCE(api_key_id, ''), method, path, status, COALESCE(request_id, ''), created_at
FROM audit_log
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, tenantID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Entry, 0, perPage)
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.APIKeyID, &e.Method, &e.Path, &e.Status, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
