package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/reclaimr/reclaimr"
)

type AccountService struct {
	db *sql.DB
}

func NewAccountService(db *sql.DB) reclaimr.AccountService {
	return &AccountService{
		db: db,
	}
}

// LookupByKey resolves an active account by exact API key match. Inactive
// accounts are invisible here: their key behaves like an unknown one.
func (as AccountService) LookupByKey(ctx context.Context, apiKey string) (reclaimr.Account, error) {
	const query = `
	SELECT
		id,
		name,
		api_key,
		sender_email,
		sender_name,
		timezone,
		is_active,
		created_at,
		updated_at
	FROM accounts
	WHERE api_key = $1 AND is_active`

	row := as.db.QueryRowContext(ctx, query, apiKey)

	account := reclaimr.Account{}
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.APIKey,
		&account.SenderEmail,
		&account.SenderName,
		&account.Timezone,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account, reclaimr.ErrAccountNotFound
		}
		return account, toDomainErr(err)
	}

	return account, nil
}
