package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/reclaimr/reclaimr"
)

type MessageService struct {
	db *sql.DB
}

func NewMessageService(db *sql.DB) reclaimr.MessageService {
	return &MessageService{
		db: db,
	}
}

func (ms MessageService) Create(ctx context.Context, msg reclaimr.Message) error {
	const query = `
	INSERT INTO messages (
		id, account_id, contact_id, lead_id, channel, direction,
		subject, body, provider, status, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11
	)`

	_, err := ms.db.ExecContext(ctx, query,
		msg.ID,
		msg.AccountID,
		nullString(msg.ContactID),
		nullString(msg.LeadID),
		msg.Channel,
		msg.Direction,
		nullString(msg.Subject),
		nullString(msg.Body),
		nullString(msg.Provider),
		msg.Status,
		msg.CreatedAt,
	)
	if err != nil {
		return toDomainErr(err)
	}

	return nil
}

func (ms MessageService) SetStatus(ctx context.Context, id, status, errMsg string, sentAt *time.Time) error {
	const query = `
	UPDATE messages
	SET status = $2, error = $3, sent_at = $4, updated_at = now()
	WHERE id = $1`

	res, err := ms.db.ExecContext(ctx, query, id, status, nullString(errMsg), sentAt)
	if err != nil {
		return toDomainErr(err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return reclaimr.ErrMessageNotFound
	}
	return nil
}
