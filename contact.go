package reclaimr

import (
	"context"
	"errors"
	"time"
)

var ErrContactNotFound = errors.New("contact not found")

// Contact is a reachable person under one account. Email and/or phone may
// be present. Within an account there is at most one contact per non-null
// email and at most one per non-null phone.
type Contact struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Name         string    `json:"name,omitempty"`
	Consent      bool      `json:"consent"`
	Unsubscribed bool      `json:"unsubscribed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ContactService interface {
	// Upsert inserts the contact or, if the account already has a contact
	// with the same email (or phone, when no email is given), refreshes
	// its mutable fields. The dedup happens in a single atomic statement,
	// so concurrent identical submissions resolve to one row. The stored
	// row is returned.
	Upsert(ctx context.Context, contact Contact) (Contact, error)
}
