package domain

import (
	"errors"
	"time"
)

var (
	ErrContractNotFound   = errors.New("contract not found")
	ErrInvalidTransition  = errors.New("invalid contract status transition")
	ErrLeadNotQualified   = errors.New("lead is not in a contractable stage")
	ErrAlreadyOutForSign  = errors.New("contract already sent for signature")
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusSigned   Status = "signed"
	StatusDeclined Status = "declined"
)

var transitions = map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusSigned, StatusDeclined},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Contract struct {
	ID                 string     `json:"id"`
	TenantID           string     `json:"tenant_id"`
	LeadID             string     `json:"lead_id"`
	Status             Status     `json:"status"`
	TotalCents         int64      `json:"total_cents"`
	SystemKW           float64    `json:"system_kw"`
	DocumentURL        string     `json:"document_url,omitempty"`
	SignatureRequestID string     `json:"signature_request_id,omitempty"`
	SignedAt           *time.Time `json:"signed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
