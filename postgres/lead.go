package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reclaimr/reclaimr"
)

type LeadService struct {
	db *sql.DB
}

func NewLeadService(db *sql.DB) reclaimr.LeadService {
	return &LeadService{
		db: db,
	}
}

func (ls LeadService) Create(ctx context.Context, lead reclaimr.Lead) error {
	rawContext, err := json.Marshal(lead.Context)
	if err != nil {
		return fmt.Errorf("encoding lead context: %w", err)
	}

	const query = `
	INSERT INTO leads (
		id, account_id, contact_id, source, context, status, created_at, updated_at, last_event_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	)`

	_, err = ls.db.ExecContext(ctx, query,
		lead.ID,
		lead.AccountID,
		lead.ContactID,
		lead.Source,
		rawContext,
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
		lead.LastEventAt,
	)
	if err != nil {
		return toDomainErr(err)
	}

	return nil
}

func (ls LeadService) GetByID(ctx context.Context, id string) (reclaimr.Lead, error) {
	const query = `
	SELECT
		id,
		account_id,
		contact_id,
		source,
		context,
		status,
		created_at,
		updated_at,
		last_event_at
	FROM leads
	WHERE id = $1`

	row := ls.db.QueryRowContext(ctx, query, id)

	lead := reclaimr.Lead{}
	var rawContext []byte
	err := row.Scan(
		&lead.ID,
		&lead.AccountID,
		&lead.ContactID,
		&lead.Source,
		&rawContext,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&lead.LastEventAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lead, reclaimr.ErrLeadNotFound
		}
		return lead, toDomainErr(err)
	}

	if err := json.Unmarshal(rawContext, &lead.Context); err != nil {
		return lead, fmt.Errorf("decoding lead context: %w", err)
	}

	return lead, nil
}
