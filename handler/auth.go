package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/reclaimr/reclaimr"
)

// AccountKeyHeader carries the per-tenant API key.
const AccountKeyHeader = "X-Account-Key"

// KeyFromHeader extracts the tenant API key. The canonical accessor covers
// normal clients; the raw-map scan covers anything that slipped past Go's
// header canonicalization (h2c proxies, hand-rolled clients). Whitespace is
// trimmed and an empty-after-trim value counts as absent.
func KeyFromHeader(h http.Header) string {
	key := h.Get(AccountKeyHeader)
	if key == "" {
		for name, values := range h {
			if strings.EqualFold(name, AccountKeyHeader) && len(values) > 0 {
				key = values[0]
				break
			}
		}
	}
	return strings.TrimSpace(key)
}

// resolution is the outcome of the auth stage. Explicit states keep "store
// not ready" from being mistaken for "unknown key".
type resolution int

const (
	resolved resolution = iota
	noKey
	invalidKey
	storeUnavailable
)

// resolveAccount runs the ordered auth checks: missing key, store not
// ready, unknown/inactive key, found. It never fails the request itself;
// unclassified store errors degrade to storeUnavailable so the caller can
// answer 503 instead of 500.
func resolveAccount(ctx context.Context, accounts reclaimr.AccountService, r *http.Request) (reclaimr.Account, resolution) {
	key := KeyFromHeader(r.Header)
	if key == "" {
		return reclaimr.Account{}, noKey
	}

	account, err := accounts.LookupByKey(ctx, key)
	switch {
	case err == nil:
		return account, resolved
	case errors.Is(err, reclaimr.ErrAccountNotFound):
		return reclaimr.Account{}, invalidKey
	default:
		return reclaimr.Account{}, storeUnavailable
	}
}
