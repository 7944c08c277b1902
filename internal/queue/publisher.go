package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pochkachaiki/millsim/internal/models/failure"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishFailures sends every event to queue on the default exchange and
// returns how many were published before the first error.
func PublishFailures(ctx context.Context, ch Channel, queue, runID string, events []failure.Event) (int, error) {
	for i, ev := range events {
		ev.RunID = runID
		body, err := json.Marshal(ev)
		if err != nil {
			return i, fmt.Errorf("marshal failure event: %w", err)
		}

		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = ch.PublishWithContext(pubCtx, "", queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
		cancel()
		if err != nil {
			return i, fmt.Errorf("publish failure event %d: %w", i, err)
		}
	}
	return len(events), nil
}
