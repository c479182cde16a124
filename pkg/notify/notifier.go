package notify

import (
	"context"

	"petsitter/pkg/kafka"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

// Notifier publishes booking lifecycle events. Publishing is best-effort:
// a failed publish must never fail the booking operation that produced it.
type Notifier interface {
	Publish(ctx context.Context, event model.BookingEvent)
}

const SchemaVersion = "1"

type kafkaNotifier struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, source string, log *logger.Logger) Notifier {
	return &kafkaNotifier{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (n *kafkaNotifier) Publish(ctx context.Context, event model.BookingEvent) {
	msg := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithSchemaVersion(SchemaVersion).
		WithSource(n.source).
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		n.log.Error("Failed to publish booking event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
		return
	}

	n.log.Debug("Published booking event",
		"event_type", event.Type,
		"booking_id", event.BookingID,
	)
}

type noopNotifier struct{}

// NewNoopNotifier returns a Notifier that discards all events.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) Publish(context.Context, model.BookingEvent) {}
