package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/reclaimr/reclaimr"
	"go.uber.org/zap"
)

// LeadNotifier is told about successfully persisted leads so the tenant can
// be notified out of band. Implementations must not block the request path.
type LeadNotifier interface {
	LeadCreated(account reclaimr.Account, contact reclaimr.Contact, lead reclaimr.Lead)
}

type IngestHandler struct {
	accounts reclaimr.AccountService
	contacts reclaimr.ContactService
	leads    reclaimr.LeadService
	spooler  reclaimr.EventSpooler // optional
	notifier LeadNotifier          // optional
	log      *zap.SugaredLogger
}

func NewIngestHandler(
	accounts reclaimr.AccountService,
	contacts reclaimr.ContactService,
	leads reclaimr.LeadService,
	spooler reclaimr.EventSpooler,
	notifier LeadNotifier,
	log *zap.SugaredLogger,
) *IngestHandler {
	return &IngestHandler{
		accounts: accounts,
		contacts: contacts,
		leads:    leads,
		spooler:  spooler,
		notifier: notifier,
		log:      log,
	}
}

// Ingest runs the pipeline: authenticate, parse, validate, upsert contact,
// create lead, respond. Auth comes first so a missing or bad key rejects
// even a malformed body. Persistence failures after validation degrade to
// 202, never 5xx.
func (ih *IngestHandler) Ingest(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, res := resolveAccount(ctx, ih.accounts, r)
	switch res {
	case noKey:
		leadsIngested.WithLabelValues(outcomeUnauthorized).Inc()
		respondDetail(ctx, rw, http.StatusUnauthorized, "auth_required")
		return
	case invalidKey:
		leadsIngested.WithLabelValues(outcomeUnauthorized).Inc()
		respondDetail(ctx, rw, http.StatusUnauthorized, "invalid_api_key")
		return
	case storeUnavailable:
		leadsIngested.WithLabelValues(outcomeUnavailable).Inc()
		respondDetail(ctx, rw, http.StatusServiceUnavailable, "db_unavailable")
		return
	}

	// Strict body policy: malformed JSON is a client error once the caller
	// is authenticated.
	var in IngestIn
	if err := decode(r, &in); err != nil {
		ih.log.Infow("ingest", "account", account.ID, "error", err.Error())
		leadsIngested.WithLabelValues(outcomeInvalid).Inc()
		respondFieldErrors(ctx, rw, map[string]string{"body": "invalid_json"})
		return
	}

	if errs := in.Validate(); len(errs) > 0 {
		leadsIngested.WithLabelValues(outcomeInvalid).Inc()
		respondFieldErrors(ctx, rw, errs)
		return
	}

	now := time.Now().UTC()

	contact := reclaimr.Contact{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Email:     in.Contact.Email,
		Phone:     in.Contact.Phone,
		Name:      in.Contact.Name,
		Consent:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := ih.contacts.Upsert(ctx, contact)
	if err != nil {
		ih.degrade(ctx, rw, account, &in, err)
		return
	}

	lead := reclaimr.Lead{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		ContactID:   stored.ID,
		Source:      in.Source,
		Context:     in.ContextMap(),
		Status:      reclaimr.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastEventAt: now,
	}

	if err := ih.leads.Create(ctx, lead); err != nil {
		ih.degrade(ctx, rw, account, &in, err)
		return
	}

	leadsIngested.WithLabelValues(outcomeCreated).Inc()

	if ih.notifier != nil {
		ih.notifier.LeadCreated(account, stored, lead)
	}

	respond(ctx, rw, http.StatusCreated, map[string]interface{}{
		"id":            lead.ID,
		"status":        "created",
		"contact_email": stored.Email,
	})
}

// degrade answers 202 for a validated payload that could not be persisted.
// The payload is spooled to the retry queue when one is configured; either
// way the caller gets an echo confirming receipt, not proof of persistence.
func (ih *IngestHandler) degrade(ctx context.Context, rw http.ResponseWriter, account reclaimr.Account, in *IngestIn, cause error) {
	ih.log.Warnw("ingest degraded", "account", account.ID, "source", in.Source, "error", cause.Error())
	leadsIngested.WithLabelValues(outcomeDegraded).Inc()

	note := "persistence_skipped:" + reasonOf(cause)

	if ih.spooler != nil {
		event := reclaimr.IngestEvent{
			AccountID:  account.ID,
			Source:     in.Source,
			Email:      in.Contact.Email,
			Phone:      in.Contact.Phone,
			Name:       in.Contact.Name,
			Context:    in.ContextMap(),
			ReceivedAt: time.Now().UTC(),
		}
		if err := ih.spooler.Spool(ctx, event); err != nil {
			ih.log.Errorw("ingest spool", "account", account.ID, "error", err.Error())
		} else {
			note = "persistence_deferred:spooled"
		}
	}

	respond(ctx, rw, http.StatusAccepted, map[string]interface{}{
		"status": "accepted",
		"note":   note,
		"echo": map[string]string{
			"source":        in.Source,
			"contact_email": in.Contact.Email,
		},
	})
}

func reasonOf(err error) string {
	if errors.Is(err, reclaimr.ErrStoreUnavailable) {
		return "store_unavailable"
	}
	return "store_error"
}
