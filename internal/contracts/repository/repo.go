package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/suncrest/suncrest-backend/internal/contracts/domain"
)

type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	if contract.TenantID == "" || contract.LeadID == "" {
		return fmt.Errorf("tenant id and lead id required")
	}
	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}
	if contract.Status == "" {
		contract.Status = domain.StatusDraft
	}

	const q = `
INSERT INTO contracts (id, tenant_id, lead_id, status, total_cents, system_kw, document_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q,
		contract.ID, contract.TenantID, contract.LeadID, contract.Status,
		contract.TotalCents, contract.SystemKW, contract.DocumentURL,
	).Scan(&contract.CreatedAt, &contract.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create contract: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Contract, error) {
	const q = `
SELECT id, tenant_id, lead_id, status, total_cents, system_kw,
       COALESCE(document_url, ''), COALESCE(signature_request_id, ''),
       signed_at, created_at, updated_at
FROM contracts
WHERE tenant_id = $1 AND id = $2;
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, tenantID, id))
}

// GetBySignatureRequestID resolves the contract for a provider webhook,
// which carries no tenant context.
func (r *ContractRepository) GetBySignatureRequestID(ctx context.Context, requestID string) (*domain.Contract, error) {
	const q = `
SELECT id, tenant_id, lead_id, status, total_cents, system_kw,
       COALESCE(document_url, ''), COALESCE(signature_request_id, ''),
       signed_at, created_at, updated_at
FROM contracts
WHERE signature_request_id = $1;
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, requestID))
}

func (r *ContractRepository) scanOne(row *sql.Row) (*domain.Contract, error) {
	var c domain.Contract
	err := row.Scan(
		&c.ID, &c.TenantID, &c.LeadID, &c.Status, &c.TotalCents, &c.SystemKW,
		&c.DocumentURL, &c.SignatureRequestID, &c.SignedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return &c, nil
}

func (r *ContractRepository) List(ctx context.Context, tenantID string, page, perPage int) ([]domain.Contract, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	const countQ = `SELECT COUNT(*) FROM contracts WHERE tenant_id = $1;`
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	const q = `
SELECT id, tenant_id, lead_id, status, total_cents, system_kw,
       COALESCE(document_url, ''), COALESCE(signature_request_id, ''),
       signed_at, created_at, updated_at
FROM contracts
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, tenantID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Contract, 0, perPage)
	for rows.Next() {
		var c domain.Contract
		if err := rows.Scan(
			&c.ID, &c.TenantID, &c.LeadID, &c.Status, &c.TotalCents, &c.SystemKW,
			&c.DocumentURL, &c.SignatureRequestID, &c.SignedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// MarkSent records the provider's signature request ID and moves the
// contract to sent.
func (r *ContractRepository) MarkSent(ctx context.Context, tenantID, id, signatureRequestID string) error {
	const q = `
UPDATE contracts
SET status = $3, signature_request_id = $4, updated_at = NOW()
WHERE tenant_id = $1 AND id = $2;
`
	res, err := r.db.ExecContext(ctx, q, tenantID, id, domain.StatusSent, signatureRequestID)
	if err != nil {
		return fmt.Errorf("mark contract sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

// UpdateStatus finalizes a signature outcome (signed or declined).
func (r *ContractRepository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status) error {
	const q = `
UPDATE contracts
SET status = $3,
    signed_at = CASE WHEN $3 = 'signed' THEN NOW() ELSE signed_at END,
    updated_at = NOW()
WHERE tenant_id = $1 AND id = $2;
`
	res, err := r.db.ExecContext(ctx, q, tenantID, id, status)
	if err != nil {
		return fmt.Errorf("update contract status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}
