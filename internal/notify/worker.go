package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/nishkarsh/go-shop-api/internal/kafka"
	"github.com/nishkarsh/go-shop-api/internal/redisx"
)

// Worker consumes order events and sends the customer email. Send
// failures are logged and the message committed anyway: notifications
// are not allowed to wedge the stream.
type Worker struct {
	Redis  *redis.Client
	Mailer Mailer
}

func (w *Worker) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		slog.Warn("undecodable order event, skipping", "err", err)
		return nil
	}
	if env.EventType != EventOrderConfirmed {
		return nil
	}

	// dedup on event id; kafka delivery is at-least-once
	dkey := fmt.Sprintf(redisx.KeyNotifyDedup, env.EventID)
	if exists, _ := redisx.Exists(ctx, w.Redis, dkey); exists {
		return nil
	}
	_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[OrderConfirmedPayload](env.Payload)
	if err != nil {
		slog.Warn("undecodable confirmation payload, skipping", "event_id", env.EventID, "err", err)
		return nil
	}
	if p.CustomerEmail == "" {
		return nil
	}

	subject, body := confirmationBody(p)
	if err := w.Mailer.Send(p.CustomerEmail, subject, body); err != nil {
		slog.Warn("confirmation email failed", "order_id", p.OrderID, "err", err)
	}
	return nil
}
