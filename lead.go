package reclaimr

import (
	"context"
	"errors"
	"time"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead lifecycle statuses. Transitions past StatusOpen are owned by the
// downstream sequence/messaging logic, not by the ingest pipeline.
const (
	StatusOpen   = "open"
	StatusReply  = "reply"
	StatusWon    = "won"
	StatusLost   = "lost"
	StatusPaused = "paused"
)

// Lead is one ingestion event tying a contact to its originating context.
type Lead struct {
	ID          string                 `json:"id"`
	AccountID   string                 `json:"account_id"`
	ContactID   string                 `json:"contact_id"`
	Source      string                 `json:"source"`
	Context     map[string]interface{} `json:"context"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	LastEventAt time.Time              `json:"last_event_at"`
}

type LeadService interface {
	Create(ctx context.Context, newLead Lead) error
	GetByID(ctx context.Context, id string) (Lead, error)
}
