package service

import (
	"context"

	"github.com/suncrest/suncrest-backend/internal/invoices/domain"
)

// Repository is the persistence surface the approval workflow needs.
type Repository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status domain.Status, approverID string) error
}

// ApprovalService enforces the invoice approval workflow:
// draft -> pending_approval -> approved|rejected, approved -> paid,
// rejected -> draft.
type ApprovalService struct {
	repo Repository
}

func NewApprovalService(repo Repository) *ApprovalService {
	return &ApprovalService{repo: repo}
}

func (s *ApprovalService) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.AmountCents <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.repo.Create(ctx, inv)
}

// Submit moves a draft invoice into the approval queue.
func (s *ApprovalService) Submit(ctx context.Context, tenantID, id string) (*domain.Invoice, error) {
	return s.transition(ctx, tenantID, id, domain.StatusPendingApproval, "")
}

// Approve records the approver and moves the invoice to approved.
func (s *ApprovalService) Approve(ctx context.Context, tenantID, id, approverID string) (*domain.Invoice, error) {
	if approverID == "" {
		return nil, domain.ErrApproverRequired
	}
	return s.transition(ctx, tenantID, id, domain.StatusApproved, approverID)
}

// Reject sends the invoice back with the rejecting approver recorded.
func (s *ApprovalService) Reject(ctx context.Context, tenantID, id, approverID string) (*domain.Invoice, error) {
	if approverID == "" {
		return nil, domain.ErrApproverRequired
	}
	return s.transition(ctx, tenantID, id, domain.StatusRejected, approverID)
}

// MarkPaid finalizes an approved invoice.
func (s *ApprovalService) MarkPaid(ctx context.Context, tenantID, id string) (*domain.Invoice, error) {
	return s.transition(ctx, tenantID, id, domain.StatusPaid, "")
}

func (s *ApprovalService) transition(ctx context.Context, tenantID, id string, to domain.Status, approverID string) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(inv.Status, to) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, tenantID, id, to, approverID); err != nil {
		return nil, err
	}

	inv.Status = to
	if approverID != "" {
		inv.ApproverID = approverID
	}
	return inv, nil
}
