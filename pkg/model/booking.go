package model

import (
	"time"
)

// BookingStatus is the booking lifecycle state. Transitions are driven
// exclusively by the booking service commands; see CanBeCancelled and
// IsTerminal for the predicates shared with callers.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingRejected   BookingStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the booking can never change status again.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

// IsActive reports whether the booking occupies the sitter's calendar.
// Only active bookings participate in conflict detection.
func (s BookingStatus) IsActive() bool {
	return s == BookingConfirmed || s == BookingInProgress
}

// CanBeCancelled reports whether Cancel is a legal command. InProgress
// and terminal bookings cannot be cancelled.
func (s BookingStatus) CanBeCancelled() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking is a sitter's application against a care request and, once
// accepted, the confirmed engagement. StartDate/EndDate are copied from
// the care request at creation so calendar queries stay single-collection.
type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RequestID string        `json:"request_id" bson:"request_id" validate:"required,mongodb"`
	SitterID  string        `json:"sitter_id" bson:"sitter_id" validate:"required"`
	OwnerID   string        `json:"owner_id" bson:"owner_id" validate:"required"`
	StartDate time.Time     `json:"start_date" bson:"start_date" validate:"required"`
	EndDate   time.Time     `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	Status    BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled rejected"`

	// Payment fields are recorded but never settled here.
	TotalAmount  float64  `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	PlatformFee  *float64 `json:"platform_fee,omitempty" bson:"platform_fee,omitempty"`
	SitterAmount *float64 `json:"sitter_amount,omitempty" bson:"sitter_amount,omitempty"`

	Notes              string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CancellationReason string `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty" validate:"omitempty,max=500"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

// CanBeCompleted reports whether Complete is legal right now: the service
// window must have closed and the booking must be running.
func (b *Booking) CanBeCompleted(now time.Time) bool {
	return b.Status == BookingInProgress && !now.Before(b.EndDate)
}

// CanBeStarted reports whether Start is legal right now.
func (b *Booking) CanBeStarted(now time.Time) bool {
	return b.Status == BookingConfirmed && !now.Before(b.StartDate)
}

// ApplyInput is the payload for creating a pending booking.
type ApplyInput struct {
	RequestID string  `json:"request_id" validate:"required,mongodb"`
	SitterID  string  `json:"sitter_id" validate:"required"`
	Notes     string  `json:"notes,omitempty" validate:"omitempty,max=500"`
	Amount    float64 `json:"amount,omitempty" validate:"gte=0"`
}

// BookingFilter narrows booking searches. Nil time bounds mean unbounded.
type BookingFilter struct {
	RequestID string
	SitterID  string
	OwnerID   string
	Status    BookingStatus
	StartTime *time.Time
	EndTime   *time.Time
}
