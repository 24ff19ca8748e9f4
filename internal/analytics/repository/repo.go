package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MonthlyRevenue is the sum of paid invoices for one calendar month.
type MonthlyRevenue struct {
	Month        time.Time `json:"month"`
	RevenueCents int64     `json:"revenue_cents"`
}

// Summary is the cached per-tenant dashboard snapshot refreshed by the
// worker.
type Summary struct {
	TenantID         string    `json:"tenant_id"`
	TotalLeads       int       `json:"total_leads"`
	WonLeads         int       `json:"won_leads"`
	SignedContracts  int       `json:"signed_contracts"`
	PaidRevenueCents int64     `json:"paid_revenue_cents"`
	RefreshedAt      time.Time `json:"refreshed_at"`
}

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// StageCounts returns lead counts grouped by pipeline stage.
func (r *AnalyticsRepository) StageCounts(ctx context.Context, tenantID string) (map[string]int, error) {
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

	counts := make(map[string]int)
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

// MonthlyRevenueSeries returns paid-invoice revenue per month for the
// trailing window, oldest first. Months with no revenue are absent.
func (r *AnalyticsRepository) MonthlyRevenueSeries(ctx context.Context, tenantID string, months int) ([]MonthlyRevenue, error) {
	if months < 1 {
		months = 12
	}

	const q = `
SELECT date_trunc('month', updated_at) AS month, SUM(amount_cents)
FROM invoices
WHERE tenant_id = $1
  AND status = 'paid'
  AND updated_at >= date_trunc('month', NOW()) - ($2 || ' months')::interval
GROUP BY month
ORDER BY month ASC;
`
	rows, err := r.db.QueryContext(ctx, q, tenantID, months)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	out := make([]MonthlyRevenue, 0, months)
	for rows.Next() {
		var m MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TenantIDs lists every tenant that owns at least one lead. Used by the
// worker to know whose summaries to refresh.
func (r *AnalyticsRepository) TenantIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT tenant_id FROM leads WHERE deleted_at IS NULL;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RefreshSummary recomputes and upserts a tenant's dashboard snapshot.
func (r *AnalyticsRepository) RefreshSummary(ctx context.Context, tenantID string) (*Summary, error) {
	const q = `
INSERT INTO analytics_summary (tenant_id, total_leads, won_leads, signed_contracts, paid_revenue_cents, refreshed_at)
SELECT
	$1,
	(SELECT COUNT(*) FROM leads WHERE tenant_id = $1 AND deleted_at IS NULL),
	(SELECT COUNT(*) FROM leads WHERE tenant_id = $1 AND deleted_at IS NULL AND stage = 'won'),
	(SELECT COUNT(*) FROM contracts WHERE tenant_id = $1 AND status = 'signed'),
	(SELECT COALESCE(SUM(amount_cents), 0) FROM invoices WHERE tenant_id = $1 AND status = 'paid'),
	NOW()
ON CONFLICT (tenant_id) DO UPDATE SET
	total_leads = EXCLUDED.total_leads,
	won_leads = EXCLUDED.won_leads,
	signed_contracts = EXCLUDED.signed_contracts,
	paid_revenue_cents = EXCLUDED.paid_revenue_cents,
	refreshed_at = EXCLUDED.refreshed_at
RETURNING tenant_id, total_leads, won_leads, signed_contracts, paid_revenue_cents, refreshed_at;
`
	var s Summary
	err := r.db.QueryRowContext(ctx, q, tenantID).Scan(
		&s.TenantID, &s.TotalLeads, &s.WonLeads, &s.SignedContracts, &s.PaidRevenueCents, &s.RefreshedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("refresh summary: %w", err)
	}
	return &s, nil
}

// GetSummary returns the cached snapshot, or sql.ErrNoRows if the
// tenant has never been refreshed.
func (r *AnalyticsRepository) GetSummary(ctx context.Context, tenantID string) (*Summary, error) {
	const q = `
SELECT tenant_id, total_leads, won_leads, signed_contracts, paid_revenue_cents, refreshed_at
FROM analytics_summary
WHERE tenant_id = $1;
`
	var s Summary
	err := r.db.QueryRowContext(ctx, q, tenantID).Scan(
		&s.TenantID, &s.TotalLeads, &s.WonLeads, &s.SignedContracts, &s.PaidRevenueCents, &s.RefreshedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
