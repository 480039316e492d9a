package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/reclaimr/reclaimr"
	"go.uber.org/zap"
)

type LeadHandler struct {
	accounts reclaimr.AccountService
	leads    reclaimr.LeadService
	log      *zap.SugaredLogger
}

func NewLeadHandler(accounts reclaimr.AccountService, leads reclaimr.LeadService, log *zap.SugaredLogger) *LeadHandler {
	return &LeadHandler{
		accounts: accounts,
		leads:    leads,
		log:      log,
	}
}

// GetByID returns a single lead. The lookup is tenant-scoped: a lead that
// belongs to another account reads as not found.
func (lh *LeadHandler) GetByID(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, res := resolveAccount(ctx, lh.accounts, r)
	switch res {
	case noKey:
		respondDetail(ctx, rw, http.StatusUnauthorized, "auth_required")
		return
	case invalidKey:
		respondDetail(ctx, rw, http.StatusUnauthorized, "invalid_api_key")
		return
	case storeUnavailable:
		respondDetail(ctx, rw, http.StatusServiceUnavailable, "db_unavailable")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(ctx, rw, http.StatusBadRequest, errors.New("ID is not in its proper form"))
		return
	}

	lead, err := lh.leads.GetByID(ctx, id.String())
	if err != nil {
		switch {
		case errors.Is(err, reclaimr.ErrLeadNotFound):
			respondErr(ctx, rw, http.StatusNotFound, err)
		case errors.Is(err, reclaimr.ErrStoreUnavailable):
			respondDetail(ctx, rw, http.StatusServiceUnavailable, "db_unavailable")
		default:
			lh.log.Errorw("GetByID", "error", err.Error())
			respondErr(ctx, rw, http.StatusInternalServerError, err)
		}
		return
	}

	if lead.AccountID != account.ID {
		respondErr(ctx, rw, http.StatusNotFound, reclaimr.ErrLeadNotFound)
		return
	}

	respond(ctx, rw, http.StatusOK, lead)
}
