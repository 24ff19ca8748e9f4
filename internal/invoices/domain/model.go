package domain

import (
	"errors"
	"time"
)

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
	ErrApproverRequired  = errors.New("approver is required")
	ErrInvalidAmount     = errors.New("invoice amount must be positive")
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusPaid            Status = "paid"
)

var transitions = map[Status][]Status{
	StatusDraft:           {StatusPendingApproval},
	StatusPendingApproval: {StatusApproved, StatusRejected},
	StatusApproved:        {StatusPaid},
	StatusRejected:        {StatusDraft},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	ContractID  string     `json:"contract_id"`
	Number      string     `json:"number"`
	AmountCents int64      `json:"amount_cents"`
	Status      Status     `json:"status"`
	ApproverID  string     `json:"approver_id,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
