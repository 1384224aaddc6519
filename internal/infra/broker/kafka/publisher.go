package kafka

import (
	"context"
	"encoding/json"
	"time"

	"venuebook/internal/domain/shared/events"
)

// Publisher adapts the sync producer to the domain event port. Delivery
// uses a bounded retry with a backoff delay; the caller treats a final
// failure as log-and-continue.
type Publisher struct {
	Producer *Producer
	Topic    string
	Backoff  []time.Duration
}

type envelope struct {
	Event       string    `json:"event"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload"`
}

func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(envelope{
		Event:       event.EventName(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event,
	})
	if err != nil {
		return err
	}
	headers := map[string]string{"event": event.EventName()}
	err = p.Producer.Send(ctx, p.Topic, event.AggregateID(), payload, headers)
	for _, delay := range p.Backoff {
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		err = p.Producer.Send(ctx, p.Topic, event.AggregateID(), payload, headers)
	}
	return err
}
