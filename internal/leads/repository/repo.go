package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/suncrest/suncrest-backend/internal/leads/domain"
)

// LeadRepository provides persistence operations for pipeline leads.
type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead in the "new" stage for the given tenant.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if lead.TenantID == "" {
		return fmt.Errorf("tenant id required")
	}
	if lead.Name == "" {
		return fmt.Errorf("name required")
	}
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Stage == "" {
		lead.Stage = domain.StageNew
	}

	const q = `
INSERT INTO leads (id, tenant_id, name, email, phone, source, stage, estimated_kw)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q,
		lead.ID, lead.TenantID, lead.Name, lead.Email, lead.Phone,
		lead.Source, lead.Stage, lead.EstimatedKW,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// GetByID returns a tenant's lead or ErrLeadNotFound.
func (r *LeadRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Lead, error) {
	const q = `
SELECT id, tenant_id, name, email, phone, source, stage, estimated_kw, created_at, updated_at
FROM leads
WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL;
`
	var l domain.Lead
	err := r.db.QueryRowContext(ctx, q, tenantID, id).Scan(
		&l.ID, &l.TenantID, &l.Name, &l.Email, &l.Phone,
		&l.Source, &l.Stage, &l.EstimatedKW, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}

// List returns one page of a tenant's leads, newest first, optionally
// filtered by stage, plus the unpaged total.
func (r *LeadRepository) List(ctx context.Context, tenantID string, stage domain.Stage, page, perPage int) ([]domain.Lead, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	const countQ = `
SELECT COUNT(*)
FROM leads
WHERE tenant_id = $1 AND deleted_at IS NULL AND ($2 = '' OR stage = $2);
`
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, tenantID, string(stage)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	const q = `
SELECT id, tenant_id, name, email, phone, source, stage, estimated_kw, created_at, updated_at
FROM leads
WHERE tenant_id = $1 AND deleted_at IS NULL AND ($2 = '' OR stage = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4;
`
	rows, err := r.db.QueryContext(ctx, q, tenantID, string(stage), perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Lead, 0, perPage)
	for rows.Next() {
		var l domain.Lead
		if err := rows.Scan(
			&l.ID, &l.TenantID, &l.Name, &l.Email, &l.Phone,
			&l.Source, &l.Stage, &l.EstimatedKW, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStage moves a lead to a new pipeline stage after validating the
// transition against the current stage.
func (r *LeadRepository) UpdateStage(ctx context.Context, tenantID, id string, to domain.Stage) (*domain.Lead, error) {
	if !to.Valid() {
		return nil, domain.ErrInvalidStage
	}

	lead, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(lead.Stage, to) {
		return nil, domain.ErrInvalidStageTransition
	}

	const q = `
UPDATE leads
SET stage = $3, updated_at = NOW()
WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
RETURNING updated_at;
`
	if err := r.db.QueryRowContext(ctx, q, tenantID, id, to).Scan(&lead.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("update lead stage: %w", err)
	}
	lead.Stage = to
	return lead, nil
}

// Delete soft-deletes a lead.
func (r *LeadRepository) Delete(ctx context.Context, tenantID, id string) error {
	const q = `
UPDATE leads
SET deleted_at = NOW()
WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL;
`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

// StageCounts returns the number of open and closed leads per stage.
func (r *LeadRepository) StageCounts(ctx context.Context, tenantID string) (map[domain.Stage]int, error) {
	const q = `
SELECT stage, COUNT(*)
FROM leads
WHERE tenant_id = $1 AND deleted_at IS NULL
GROUP BY stage;
`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("stage counts: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Stage]int)
	for rows.Next() {
		var (
			stage string
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		out[domain.Stage(stage)] = n
	}
	return out, rows.Err()
}
