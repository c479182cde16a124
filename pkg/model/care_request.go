package model

import (
	"time"
)

// RequestStatus is the care request lifecycle state. It is mutated only
// by the owner (create/cancel) and by the booking service's request
// synchronizer as the request's booking progresses.
type RequestStatus string

const (
	RequestOpen       RequestStatus = "open"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
	RequestExpired    RequestStatus = "expired"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestOpen, RequestInProgress, RequestCompleted, RequestCancelled, RequestExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the request can no longer accept bookings.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestCompleted, RequestCancelled, RequestExpired:
		return true
	}
	return false
}

type CareType string

const (
	CarePetSitting  CareType = "pet_sitting"
	CarePetBoarding CareType = "pet_boarding"
	CareDogWalking  CareType = "dog_walking"
	CareDaycare     CareType = "daycare"
	CareOvernight   CareType = "overnight"
)

// CareRequest is an owner's posting for a service window. At most one
// active (confirmed/in-progress) booking may reference it at a time;
// any number of pending or closed applications may coexist.
type CareRequest struct {
	ID                  string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title               string        `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description         string        `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	CareType            CareType      `json:"care_type" bson:"care_type" validate:"required,oneof=pet_sitting pet_boarding dog_walking daycare overnight"`
	StartDate           time.Time     `json:"start_date" bson:"start_date" validate:"required"`
	EndDate             time.Time     `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	Budget              float64       `json:"budget" bson:"budget" validate:"gte=0"`
	Location            string        `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Latitude            *float64      `json:"latitude,omitempty" bson:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude           *float64      `json:"longitude,omitempty" bson:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	SpecialInstructions string        `json:"special_instructions,omitempty" bson:"special_instructions,omitempty" validate:"omitempty,max=500"`
	Status              RequestStatus `json:"status" bson:"status" validate:"required,oneof=open in_progress completed cancelled expired"`
	OwnerID             string        `json:"owner_id" bson:"owner_id" validate:"required"`
	PetID               string        `json:"pet_id" bson:"pet_id" validate:"required"`
	CreatedAt           time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt           time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// IsActive reports whether the request is still open for applications.
func (r *CareRequest) IsActive(now time.Time) bool {
	return r.Status == RequestOpen && r.EndDate.After(now)
}

// DurationInDays counts the calendar days the window spans, inclusive.
func (r *CareRequest) DurationInDays() int {
	start := r.StartDate.UTC().Truncate(24 * time.Hour)
	end := r.EndDate.UTC().Truncate(24 * time.Hour)
	return int(end.Sub(start).Hours()/24) + 1
}

// CareRequestUpdate carries the owner-editable fields. Zero values mean
// "leave unchanged"; dates move together and only while the request is
// open with no applications.
type CareRequestUpdate struct {
	Title               string     `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description         *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	Budget              *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Location            *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	SpecialInstructions *string    `json:"special_instructions,omitempty" validate:"omitempty,max=500"`
}
