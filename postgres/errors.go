package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/lib/pq"
	"github.com/reclaimr/reclaimr"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const (
	uniqueViolation = "23505"
	undefinedTable  = "42P01"
	undefinedColumn = "42703"
)

// Postgres error classes that mean the server cannot currently answer.
const (
	classConnectionException  = "08"
	classOperatorIntervention = "57"
)

// toDomainErr maps driver-level failures onto reclaimr.ErrStoreUnavailable.
// An unmigrated schema (undefined table/column), a broken connection, or a
// server shutting down are all "store not ready" conditions the pipeline
// tolerates; they must never read as "not found" to a caller.
func toDomainErr(err error) error {
	if err == nil {
		return nil
	}

	var pqerr *pq.Error
	if errors.As(err, &pqerr) {
		switch {
		case pqerr.Code == undefinedTable || pqerr.Code == undefinedColumn:
			return fmt.Errorf("%w: schema not migrated (%s)", reclaimr.ErrStoreUnavailable, pqerr.Code)
		case pqerr.Code.Class() == classConnectionException,
			pqerr.Code.Class() == classOperatorIntervention:
			return fmt.Errorf("%w: %s", reclaimr.ErrStoreUnavailable, pqerr.Code)
		}
		return err
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, io.EOF),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%w: %v", reclaimr.ErrStoreUnavailable, err)
	}

	return err
}
