package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/suncrest/suncrest-backend/internal/invoices/domain"
)

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.TenantID == "" || inv.ContractID == "" {
		return fmt.Errorf("tenant id and contract id required")
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Status == "" {
		inv.Status = domain.StatusDraft
	}

	const q = `
INSERT INTO invoices (id, tenant_id, contract_id, number, amount_cents, status, due_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q,
		inv.ID, inv.TenantID, inv.ContractID, inv.Number,
		inv.AmountCents, inv.Status, inv.DueDate,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Invoice, error) {
	const q = `
SELECT id, tenant_id, contract_id, number, amount_cents, status,
       COALESCE(approver_id, ''), approved_at, due_date, created_at, updated_at
FROM invoices
WHERE tenant_id = $1 AND id = $2;
`
	var inv domain.Invoice
	err := r.db.QueryRowContext(ctx, q, tenantID, id).Scan(
		&inv.ID, &inv.TenantID, &inv.ContractID, &inv.Number, &inv.AmountCents,
		&inv.Status, &inv.ApproverID, &inv.ApprovedAt, &inv.DueDate,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context, tenantID string, status domain.Status, page, perPage int) ([]domain.Invoice, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	const countQ = `
SELECT COUNT(*)
FROM invoices
WHERE tenant_id = $1 AND ($2 = '' OR status = $2);
`
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, tenantID, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	const q = `
SELECT id, tenant_id, contract_id, number, amount_cents, status,
       COALESCE(approver_id, ''), approved_at, due_date, created_at, updated_at
FROM invoices
WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4;
`
	rows, err := r.db.QueryContext(ctx, q, tenantID, string(status), perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Invoice, 0, perPage)
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.TenantID, &inv.ContractID, &inv.Number, &inv.AmountCents,
			&inv.Status, &inv.ApproverID, &inv.ApprovedAt, &inv.DueDate,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

// UpdateStatus writes a status change; approver and approved_at are set
// only when entering the approved state.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, approverID string) error {
	const q = `
UPDATE invoices
SET status = $3,
    approver_id = CASE WHEN $4 <> '' THEN $4 ELSE approver_id END,
    approved_at = CASE WHEN $3 = 'approved' THEN NOW() ELSE approved_at END,
    updated_at = NOW()
WHERE tenant_id = $1 AND id = $2;
`
	res, err := r.db.ExecContext(ctx, q, tenantID, id, status, approverID)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
