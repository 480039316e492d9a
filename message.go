package reclaimr

import (
	"context"
	"errors"
	"time"
)

var ErrMessageNotFound = errors.New("message not found")

// Message channels and delivery statuses.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	DirectionOut = "out"
	DirectionIn  = "in"

	MessageQueued = "queued"
	MessageSent   = "sent"
	MessageFailed = "failed"
)

// Message is a single outbound or inbound message unit, linked to an
// account and optionally to a contact and lead.
type Message struct {
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	ContactID string     `json:"contact_id,omitempty"`
	LeadID    string     `json:"lead_id,omitempty"`
	Channel   string     `json:"channel"`
	Direction string     `json:"direction"`
	Subject   string     `json:"subject,omitempty"`
	Body      string     `json:"body,omitempty"`
	Provider  string     `json:"provider,omitempty"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type MessageService interface {
	Create(ctx context.Context, msg Message) error
	// SetStatus records the delivery outcome. sentAt may be nil when the
	// message never left the service.
	SetStatus(ctx context.Context, id, status, errMsg string, sentAt *time.Time) error
}
