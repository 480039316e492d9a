package postgres

import (
	"context"
	"database/sql"

	"github.com/reclaimr/reclaimr"
)

type ContactService struct {
	db *sql.DB
}

func NewContactService(db *sql.DB) reclaimr.ContactService {
	return &ContactService{
		db: db,
	}
}

// Upsert deduplicates on (account_id, email) when an email is given,
// otherwise on (account_id, phone). The conflict targets match the partial
// unique indexes in the schema, so two concurrent submissions for the same
// identifier resolve to a single row without a read-then-write race.
func (cs ContactService) Upsert(ctx context.Context, contact reclaimr.Contact) (reclaimr.Contact, error) {
	const byEmail = `
	INSERT INTO contacts (
		id, account_id, email, phone, name, consent, unsubscribed, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, false, $7, $7
	)
	ON CONFLICT (account_id, email) WHERE email IS NOT NULL
	DO UPDATE SET
		name = COALESCE(EXCLUDED.name, contacts.name),
		phone = COALESCE(EXCLUDED.phone, contacts.phone),
		updated_at = EXCLUDED.updated_at
	RETURNING id, account_id, email, phone, name, consent, unsubscribed, created_at, updated_at`

	const byPhone = `
	INSERT INTO contacts (
		id, account_id, email, phone, name, consent, unsubscribed, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, false, $7, $7
	)
	ON CONFLICT (account_id, phone) WHERE phone IS NOT NULL
	DO UPDATE SET
		name = COALESCE(EXCLUDED.name, contacts.name),
		email = COALESCE(EXCLUDED.email, contacts.email),
		updated_at = EXCLUDED.updated_at
	RETURNING id, account_id, email, phone, name, consent, unsubscribed, created_at, updated_at`

	query := byEmail
	if contact.Email == "" {
		query = byPhone
	}

	row := cs.db.QueryRowContext(ctx, query,
		contact.ID,
		contact.AccountID,
		nullString(contact.Email),
		nullString(contact.Phone),
		nullString(contact.Name),
		contact.Consent,
		contact.CreatedAt,
	)

	var email, phone, name sql.NullString
	stored := reclaimr.Contact{}
	err := row.Scan(
		&stored.ID,
		&stored.AccountID,
		&email,
		&phone,
		&name,
		&stored.Consent,
		&stored.Unsubscribed,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return stored, toDomainErr(err)
	}

	stored.Email = email.String
	stored.Phone = phone.String
	stored.Name = name.String

	return stored, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
