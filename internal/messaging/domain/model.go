package domain

import (
	"errors"
	"time"
)

var (
	ErrThreadNotFound = errors.New("message thread not found")
	ErrEmptyMessage   = errors.New("message body is empty")
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Thread is one WhatsApp conversation with a contact, keyed by tenant
// and phone number.
type Thread struct {
	ThreadID      string    `json:"thread_id"`
	TenantID      string    `json:"tenant_id"`
	LeadID        string    `json:"lead_id,omitempty"`
	Phone         string    `json:"phone"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Message struct {
	ID                string    `json:"id"`
	ThreadID          string    `json:"thread_id"`
	Direction         Direction `json:"direction"`
	Body              string    `json:"body"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	Status            string    `json:"status,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
