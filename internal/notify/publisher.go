package notify

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/nishkarsh/go-shop-api/internal/kafka"
)

type Publisher struct {
	Producer *kafkax.Producer
	Service  string
}

func (p *Publisher) OrderConfirmed(payload OrderConfirmedPayload) {
	p.publish(EventOrderConfirmed, payload.OrderID, kafkax.MustMarshal(payload))
}

func (p *Publisher) OrderUnplaced(payload OrderUnplacedPayload) {
	p.publish(EventOrderUnplaced, payload.OrderID, kafkax.MustMarshal(payload))
}

func (p *Publisher) publish(eventType, orderID string, payload []byte) {
	if p == nil || p.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		CorrelationID: orderID,
		Payload:       payload,
	}
	p.Producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
