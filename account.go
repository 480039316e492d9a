package reclaimr

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates the store is reachable but no active
	// account matches the given API key.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStoreUnavailable indicates the backing store is not ready
	// (unreachable, not provisioned, or not migrated). It is a tolerated
	// condition, distinct from not-found, so callers can degrade instead
	// of failing the request.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Account is a tenant. Accounts are provisioned out of band and are
// read-only from the ingest pipeline's perspective.
type Account struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	APIKey      string    `json:"-"`
	SenderEmail string    `json:"sender_email"`
	SenderName  string    `json:"sender_name"`
	Timezone    string    `json:"timezone"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AccountService interface {
	// LookupByKey resolves an active account by exact API key match.
	// Returns ErrAccountNotFound for an unknown or inactive key and
	// ErrStoreUnavailable when the store cannot answer.
	LookupByKey(ctx context.Context, apiKey string) (Account, error)
}
