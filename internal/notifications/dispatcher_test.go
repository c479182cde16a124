package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"petsitter/pkg/kafka"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

func testDispatcher() *Dispatcher {
	return NewDispatcher(logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	}))
}

func eventMessage(t *testing.T, event model.BookingEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return kafka.Message{Key: event.BookingID, Value: payload}
}

func TestHandle_DispatchesKnownEvents(t *testing.T) {
	d := testDispatcher()
	scheduled := time.Now().UTC().Add(24 * time.Hour)

	events := []model.BookingEvent{
		{Type: model.EventBookingApplied, BookingID: "b1", RequestID: "r1", OwnerID: "o1", SitterID: "s1"},
		{Type: model.EventBookingAccepted, BookingID: "b1", RequestID: "r1", OwnerID: "o1", SitterID: "s1"},
		{Type: model.EventBookingReminder, BookingID: "b1", RequestID: "r1", OwnerID: "o1", SitterID: "s1", ScheduledFor: &scheduled},
	}

	for _, event := range events {
		if err := d.Handle(context.Background(), eventMessage(t, event)); err != nil {
			t.Errorf("%s: unexpected error: %v", event.Type, err)
		}
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	d := testDispatcher()

	err := d.Handle(context.Background(), kafka.Message{Value: []byte("{not json")})
	if err == nil {
		t.Fatal("expected an error")
	}
	var kafkaErr *kafka.KafkaError
	if !errors.As(err, &kafkaErr) || !kafkaErr.IsPermanent() {
		t.Errorf("expected a permanent error, got %v", err)
	}
}

func TestHandle_UnknownEventType(t *testing.T) {
	d := testDispatcher()

	err := d.Handle(context.Background(), eventMessage(t, model.BookingEvent{
		Type:      model.BookingEventType("booking.exploded"),
		BookingID: "b1",
	}))
	if err == nil {
		t.Fatal("expected an error")
	}
	var kafkaErr *kafka.KafkaError
	if !errors.As(err, &kafkaErr) || !kafkaErr.IsPermanent() {
		t.Errorf("expected a permanent error, got %v", err)
	}
}

func TestCompose_RecipientSelection(t *testing.T) {
	d := testDispatcher()

	tests := []struct {
		eventType model.BookingEventType
		recipient string
	}{
		{model.EventBookingApplied, "owner-1"},
		{model.EventBookingAccepted, "sitter-1"},
		{model.EventBookingRejected, "sitter-1"},
		{model.EventBookingCancelled, "owner-1"},
		{model.EventBookingStarted, "owner-1"},
		{model.EventBookingCompleted, "owner-1"},
		{model.EventBookingReminder, "sitter-1"},
	}

	for _, tt := range tests {
		recipient, message := d.compose(model.BookingEvent{
			Type:     tt.eventType,
			OwnerID:  "owner-1",
			SitterID: "sitter-1",
		})
		if recipient != tt.recipient {
			t.Errorf("%s: expected recipient %s, got %s", tt.eventType, tt.recipient, recipient)
		}
		if message == "" {
			t.Errorf("%s: expected a message", tt.eventType)
		}
	}
}
