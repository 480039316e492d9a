package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/reclaimr/reclaimr"
	"go.uber.org/zap"
)

// retryDelay throttles replays while the store is still down so the worker
// does not spin on a hot requeue loop.
const retryDelay = 5 * time.Second

// Worker drains spooled ingest events and replays the contact upsert and
// lead creation once the store is back.
type Worker struct {
	ch       *amqp.Channel
	contacts reclaimr.ContactService
	leads    reclaimr.LeadService
	log      *zap.SugaredLogger
}

func NewWorker(r *Rabbit, contacts reclaimr.ContactService, leads reclaimr.LeadService, log *zap.SugaredLogger) *Worker {
	return &Worker{
		ch:       r.Ch,
		contacts: contacts,
		leads:    leads,
		log:      log,
	}
}

// Start consumes the deferred-lead queue until ctx is done or the channel
// closes. Intended to run as a goroutine next to the HTTP server.
func (w *Worker) Start(ctx context.Context) error {
	deliveries, err := w.ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.log.Infow("worker", "status", "consuming", "queue", QueueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event reclaimr.IngestEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// Poison message: dead-letter it, a requeue can never succeed.
		w.log.Errorw("worker", "status", "poison message", "error", err.Error())
		d.Nack(false, false)
		return
	}

	if err := w.replay(ctx, event); err != nil {
		if errors.Is(err, reclaimr.ErrStoreUnavailable) {
			// Store still down: requeue after a pause.
			w.log.Warnw("worker", "status", "store still unavailable", "account", event.AccountID)
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
			}
			d.Nack(false, true)
			return
		}
		// A non-availability error will not fix itself; dead-letter.
		w.log.Errorw("worker", "status", "replay failed", "account", event.AccountID, "error", err.Error())
		d.Nack(false, false)
		return
	}

	w.log.Infow("worker", "status", "replayed", "account", event.AccountID, "source", event.Source)
	d.Ack(false)
}

func (w *Worker) replay(ctx context.Context, event reclaimr.IngestEvent) error {
	now := time.Now().UTC()

	contact, err := w.contacts.Upsert(ctx, reclaimr.Contact{
		ID:        uuid.NewString(),
		AccountID: event.AccountID,
		Email:     event.Email,
		Phone:     event.Phone,
		Name:      event.Name,
		Consent:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	lead := reclaimr.Lead{
		ID:          uuid.NewString(),
		AccountID:   event.AccountID,
		ContactID:   contact.ID,
		Source:      event.Source,
		Context:     event.Context,
		Status:      reclaimr.StatusOpen,
		CreatedAt:   event.ReceivedAt,
		UpdatedAt:   now,
		LastEventAt: now,
	}
	if lead.Context == nil {
		lead.Context = map[string]interface{}{}
	}

	return w.leads.Create(ctx, lead)
}
