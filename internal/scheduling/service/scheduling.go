package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "petsitter/internal/bookings/errors"
	"petsitter/internal/bookings/repository"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"
)

// SchedulingService answers calendar questions about a sitter: whether a
// window collides with their active bookings and which days still have
// capacity. Only confirmed and in-progress bookings occupy the calendar;
// pending applications never block anything.
type SchedulingService interface {
	HasConflict(ctx context.Context, sitterID string, start, end time.Time, excludeBookingID string) (bool, error)
	ConflictingBookings(ctx context.Context, sitterID string, start, end time.Time) ([]*model.Booking, error)
	IsAvailable(ctx context.Context, sitterID string, start, end time.Time) (bool, error)
	BookingCountsByDate(ctx context.Context, sitterID string, start, end time.Time) (map[time.Time]int, error)
	AvailableDates(ctx context.Context, sitterID string, start, end time.Time) ([]time.Time, error)
	CanAcceptBooking(ctx context.Context, sitterID string, bookingID string) (bool, error)
	UpcomingBookings(ctx context.Context, userID string) ([]*model.Booking, error)
	BookingsForDate(ctx context.Context, userID string, date time.Time) ([]*model.Booking, error)
}

type schedulingService struct {
	repo repository.BookingRepository
	cfg  *config.Config
}

func NewSchedulingService(repo repository.BookingRepository, cfg *config.Config) SchedulingService {
	return &schedulingService{
		repo: repo,
		cfg:  cfg,
	}
}

// HasConflict reports whether any active booking for the sitter overlaps
// [start, end). Ranges that merely touch at an endpoint do not conflict.
func (s *schedulingService) HasConflict(ctx context.Context, sitterID string, start, end time.Time, excludeBookingID string) (bool, error) {
	conflicts, err := s.conflicting(ctx, sitterID, start, end, excludeBookingID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

func (s *schedulingService) ConflictingBookings(ctx context.Context, sitterID string, start, end time.Time) ([]*model.Booking, error) {
	return s.conflicting(ctx, sitterID, start, end, "")
}

func (s *schedulingService) conflicting(ctx context.Context, sitterID string, start, end time.Time, excludeBookingID string) ([]*model.Booking, error) {
	if sitterID == "" {
		return nil, apperrors.InvalidInput("Sitter ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("End date must be after start date")
	}

	bookings, err := s.repo.FindActiveBySitter(ctx, sitterID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to load active bookings", "sitter_id", sitterID, "error", err)
		return nil, apperrors.Internal("Failed to check sitter calendar", err)
	}

	if excludeBookingID == "" {
		return bookings, nil
	}

	conflicts := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID == excludeBookingID {
			continue
		}
		conflicts = append(conflicts, b)
	}
	return conflicts, nil
}

func (s *schedulingService) IsAvailable(ctx context.Context, sitterID string, start, end time.Time) (bool, error) {
	conflict, err := s.HasConflict(ctx, sitterID, start, end, "")
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// BookingCountsByDate returns, for every calendar day in [start, end]
// inclusive, how many active bookings span that day. Days are UTC
// midnights.
func (s *schedulingService) BookingCountsByDate(ctx context.Context, sitterID string, start, end time.Time) (map[time.Time]int, error) {
	if sitterID == "" {
		return nil, apperrors.InvalidInput("Sitter ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("End date must be after start date")
	}

	bookings, err := s.repo.FindActiveBySitter(ctx, sitterID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to load active bookings", "sitter_id", sitterID, "error", err)
		return nil, apperrors.Internal("Failed to load sitter calendar", err)
	}

	counts := make(map[time.Time]int)
	firstDay := dayOf(start)
	lastDay := dayOf(end)

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		counts[day] = 0
		for _, b := range bookings {
			if !dayOf(b.StartDate).After(day) && !dayOf(b.EndDate).Before(day) {
				counts[day]++
			}
		}
	}

	return counts, nil
}

// AvailableDates lists, in chronological order, the days in [start, end]
// where the sitter still has capacity for at least one more booking.
func (s *schedulingService) AvailableDates(ctx context.Context, sitterID string, start, end time.Time) ([]time.Time, error) {
	counts, err := s.BookingCountsByDate(ctx, sitterID, start, end)
	if err != nil {
		return nil, err
	}

	available := make([]time.Time, 0, len(counts))
	firstDay := dayOf(start)
	lastDay := dayOf(end)

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if counts[day] < s.cfg.MaxBookingsPerDay {
			available = append(available, day)
		}
	}

	return available, nil
}

// CanAcceptBooking reports whether accepting the pending booking would be
// legal right now: the booking must exist, belong to the sitter, still be
// pending, and its window must be conflict-free. Unmet preconditions
// yield false, not an error.
func (s *schedulingService) CanAcceptBooking(ctx context.Context, sitterID string, bookingID string) (bool, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return false, nil
		}
		return false, apperrors.Internal("Failed to load booking", err)
	}

	if booking.SitterID != sitterID {
		return false, nil
	}
	if booking.Status != model.BookingPending {
		return false, nil
	}

	conflict, err := s.HasConflict(ctx, sitterID, booking.StartDate, booking.EndDate, bookingID)
	if err != nil {
		return false, err
	}

	return !conflict, nil
}

// UpcomingBookings returns the user's active bookings that have not yet
// ended, soonest first. The user may appear as sitter or owner.
func (s *schedulingService) UpcomingBookings(ctx context.Context, userID string) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	bookings, err := s.repo.FindForUser(ctx, userID, []model.BookingStatus{model.BookingConfirmed, model.BookingInProgress}, false)
	if err != nil {
		s.cfg.Log.Error("Failed to load upcoming bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load upcoming bookings", err)
	}

	now := time.Now().UTC()
	upcoming := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.EndDate.After(now) {
			upcoming = append(upcoming, b)
		}
	}

	return upcoming, nil
}

// BookingsForDate returns the user's active bookings spanning the given
// calendar day.
func (s *schedulingService) BookingsForDate(ctx context.Context, userID string, date time.Time) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	bookings, err := s.repo.FindForUser(ctx, userID, []model.BookingStatus{model.BookingConfirmed, model.BookingInProgress}, false)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for date", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load bookings", err)
	}

	day := dayOf(date)
	matched := make([]*model.Booking, 0)
	for _, b := range bookings {
		if !dayOf(b.StartDate).After(day) && !dayOf(b.EndDate).Before(day) {
			matched = append(matched, b)
		}
	}

	return matched, nil
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
