package model

import "time"

// BookingEventType identifies a booking lifecycle event on the wire.
type BookingEventType string

const (
	EventBookingApplied   BookingEventType = "booking.applied"
	EventBookingAccepted  BookingEventType = "booking.accepted"
	EventBookingRejected  BookingEventType = "booking.rejected"
	EventBookingCancelled BookingEventType = "booking.cancelled"
	EventBookingStarted   BookingEventType = "booking.started"
	EventBookingCompleted BookingEventType = "booking.completed"
	EventBookingReminder  BookingEventType = "booking.reminder"
)

const (
	TopicBookingEvents    = "booking-events"
	TopicBookingEventsDLQ = "dlq-booking-events"
)

// BookingEvent is the payload published to the booking events topic.
// Delivery is fire-and-forget from the core's perspective; the notifier
// worker owns retries and dead-lettering.
type BookingEvent struct {
	Type      BookingEventType `json:"type"`
	BookingID string           `json:"booking_id"`
	RequestID string           `json:"request_id"`
	SitterID  string           `json:"sitter_id"`
	OwnerID   string           `json:"owner_id"`
	Status    BookingStatus    `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	// ScheduledFor is set on reminder events: the instant the reminder
	// should be delivered (request start minus one day).
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// NewBookingEvent builds the common event envelope for a booking.
func NewBookingEvent(eventType BookingEventType, b *Booking) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		RequestID:  b.RequestID,
		SitterID:   b.SitterID,
		OwnerID:    b.OwnerID,
		Status:     b.Status,
		Reason:     b.CancellationReason,
		OccurredAt: time.Now().UTC(),
	}
}
