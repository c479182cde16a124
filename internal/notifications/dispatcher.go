package notifications

import (
	"context"

	"petsitter/pkg/kafka"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

// Dispatcher turns booking lifecycle events into user notifications.
// Delivery is a structured-log stub; the push channel behind it is
// pluggable without touching consumption.
type Dispatcher struct {
	log *logger.Logger
}

func NewDispatcher(log *logger.Logger) *Dispatcher {
	return &Dispatcher{log: log}
}

// Handle is the consumer entrypoint. Malformed payloads are permanent
// errors and go straight to the DLQ; delivery itself never fails here.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("invalid booking event payload", err)
	}
	if event.BookingID == "" || event.Type == "" {
		return kafka.NewPermanentError("booking event missing id or type", nil)
	}

	recipient, message := d.compose(event)
	if recipient == "" {
		return kafka.NewPermanentError("unknown booking event type: "+string(event.Type), nil)
	}

	fields := []any{
		"event_id", msg.GetEventID(),
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"request_id", event.RequestID,
		"recipient", recipient,
		"message", message,
	}
	if event.ScheduledFor != nil {
		fields = append(fields, "scheduled_for", event.ScheduledFor)
	}

	d.log.Info("Notification dispatched", fields...)
	return nil
}

// compose picks who hears about the event and what they are told. The
// counterparty of the actor is notified; reminders go to the sitter.
func (d *Dispatcher) compose(event model.BookingEvent) (recipient, message string) {
	switch event.Type {
	case model.EventBookingApplied:
		return event.OwnerID, "A sitter applied to your care request"
	case model.EventBookingAccepted:
		return event.SitterID, "Your application was accepted"
	case model.EventBookingRejected:
		return event.SitterID, "Your application was declined"
	case model.EventBookingCancelled:
		return event.OwnerID, "A booking for your care request was cancelled"
	case model.EventBookingStarted:
		return event.OwnerID, "Your sitter has started the service"
	case model.EventBookingCompleted:
		return event.OwnerID, "Your booking was completed"
	case model.EventBookingReminder:
		return event.SitterID, "Your booking starts soon"
	default:
		return "", ""
	}
}
