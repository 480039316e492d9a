package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/lib/pq"
	"github.com/reclaimr/reclaimr"
	"github.com/stretchr/testify/assert"
)

func TestToDomainErr(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{name: "nil", err: nil},
		{name: "undefined table means unmigrated", err: &pq.Error{Code: undefinedTable}, unavailable: true},
		{name: "undefined column means unmigrated", err: &pq.Error{Code: undefinedColumn}, unavailable: true},
		{name: "connection exception class", err: &pq.Error{Code: "08006"}, unavailable: true},
		{name: "server shutting down", err: &pq.Error{Code: "57P01"}, unavailable: true},
		{name: "unique violation stays a db error", err: &pq.Error{Code: uniqueViolation}},
		{name: "constraint violation stays a db error", err: &pq.Error{Code: "23503"}},
		{name: "bad conn", err: driver.ErrBadConn, unavailable: true},
		{name: "conn done", err: sql.ErrConnDone, unavailable: true},
		{name: "eof", err: io.EOF, unavailable: true},
		{name: "wrapped pq error", err: fmt.Errorf("query: %w", &pq.Error{Code: undefinedTable}), unavailable: true},
		{name: "no rows is not availability", err: sql.ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toDomainErr(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			if tt.unavailable {
				assert.ErrorIs(t, got, reclaimr.ErrStoreUnavailable)
				return
			}
			assert.False(t, errors.Is(got, reclaimr.ErrStoreUnavailable))
		})
	}
}
