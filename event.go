package reclaimr

import (
	"context"
	"time"
)

// IngestEvent is a validated ingest payload that could not be persisted
// because the store was unavailable. It carries everything needed to replay
// the contact upsert and lead creation later.
type IngestEvent struct {
	AccountID  string                 `json:"account_id"`
	Source     string                 `json:"source"`
	Email      string                 `json:"email,omitempty"`
	Phone      string                 `json:"phone,omitempty"`
	Name       string                 `json:"name,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	ReceivedAt time.Time              `json:"received_at"`
}

// EventSpooler stores ingest events for deferred persistence. Implementations
// must survive a process restart (the whole point is not losing accepted
// traffic while the store is down).
type EventSpooler interface {
	Spool(ctx context.Context, event IngestEvent) error
}
