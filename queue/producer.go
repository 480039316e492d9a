package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/reclaimr/reclaimr"
)

type Producer struct {
	ch *amqp.Channel
}

func NewProducer(r *Rabbit) reclaimr.EventSpooler {
	return &Producer{
		ch: r.Ch,
	}
}

// Spool publishes the event with persistent delivery mode so it survives a
// broker restart.
func (p *Producer) Spool(ctx context.Context, event reclaimr.IngestEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding ingest event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing ingest event: %w", err)
	}

	return nil
}
