package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "petsitter/internal/bookings/errors"
	"petsitter/internal/bookings/repository"
	"petsitter/internal/bookings/validator"
	requestserrors "petsitter/internal/requests/errors"
	requestsrepo "petsitter/internal/requests/repository"
	schedservice "petsitter/internal/scheduling/service"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"
	"petsitter/pkg/notify"
	"petsitter/pkg/sanitizer"
)

// BookingService owns the booking lifecycle: a sitter applies, the owner
// accepts or rejects, and the confirmed booking is started, completed, or
// cancelled. Every command takes the acting user's ID and enforces who may
// issue it. Status flips on the care request ride in the same transaction
// as the booking write.
type BookingService interface {
	Apply(ctx context.Context, in *model.ApplyInput) (*model.Booking, error)
	Accept(ctx context.Context, bookingID, actorID string) (*model.Booking, error)
	Reject(ctx context.Context, bookingID, actorID, reason string) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID, reason string) (*model.Booking, error)
	Start(ctx context.Context, bookingID, actorID string) (*model.Booking, error)
	Complete(ctx context.Context, bookingID, actorID string) (*model.Booking, error)

	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByRequestAndSitter(ctx context.Context, requestID, sitterID string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetBySitter(ctx context.Context, sitterID string, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Search(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	ActiveForUser(ctx context.Context, userID string) ([]*model.Booking, error)
	HistoryForUser(ctx context.Context, userID string) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SitterLockRepository
	requests  requestsrepo.CareRequestRepository
	scheduler schedservice.SchedulingService
	validator *validator.BookingValidator
	notifier  notify.Notifier
	sync      *requestSync
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SitterLockRepository,
	requests requestsrepo.CareRequestRepository,
	scheduler schedservice.SchedulingService,
	validator *validator.BookingValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		requests:  requests,
		scheduler: scheduler,
		validator: validator,
		notifier:  notifier,
		sync:      newRequestSync(requests, cfg.Log),
		cfg:       cfg,
	}
}

// Apply records a sitter's application to an open care request as a
// pending booking. Pending bookings never block the sitter's calendar,
// so any number of sitters may apply to the same request.
func (s *bookingService) Apply(ctx context.Context, in *model.ApplyInput) (*model.Booking, error) {
	if err := s.validator.ValidateApply(in); err != nil {
		s.cfg.Log.Warn("Booking application validation failed", "request_id", in.RequestID, "error", err)
		return nil, apperrors.Validation("Invalid booking application", map[string]any{"error": err.Error()})
	}

	request, err := s.requests.FindByID(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, requestserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Care request", in.RequestID)
		}
		if errors.Is(err, requestserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid care request ID format")
		}
		return nil, apperrors.Internal("Failed to load care request", err)
	}

	now := time.Now().UTC()
	if !request.IsActive(now) {
		return nil, apperrors.Conflict("Care request is no longer open for applications")
	}
	if in.SitterID == request.OwnerID {
		return nil, apperrors.InvalidInput("Sitter cannot apply to their own request")
	}

	existing, err := s.repo.FindByRequestAndSitter(ctx, in.RequestID, in.SitterID)
	if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check existing applications", err)
	}
	if existing != nil && !existing.Status.IsTerminal() {
		return nil, apperrors.Conflict("Sitter already has an application for this request")
	}

	booking := &model.Booking{
		RequestID:   request.ID,
		SitterID:    in.SitterID,
		OwnerID:     request.OwnerID,
		StartDate:   request.StartDate,
		EndDate:     request.EndDate,
		Status:      model.BookingPending,
		TotalAmount: in.Amount,
		Notes:       sanitizer.NormalizeNotes(in.Notes),
	}

	if err := s.validator.Validate(booking); err != nil {
		return nil, apperrors.Validation("Invalid booking", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "request_id", request.ID, "sitter_id", in.SitterID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking application created",
		"id", booking.ID,
		"request_id", booking.RequestID,
		"sitter_id", booking.SitterID,
	)
	s.notifier.Publish(ctx, model.NewBookingEvent(model.EventBookingApplied, booking))

	return booking, nil
}

// Accept confirms a pending application. Only the request owner may
// accept. An advisory lock keyed on the sitter serializes concurrent
// acceptances, then the booking is re-read and re-checked inside the
// transaction that also flips the care request to in_progress.
func (s *bookingService) Accept(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID {
		return nil, apperrors.Forbidden("Only the request owner can accept an application")
	}

	lockID, err := s.acquireSitterLock(ctx, booking.SitterID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release sitter lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var accepted *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		fresh, err := s.repo.FindByID(sessCtx, bookingID)
		if err != nil {
			return apperrors.Internal("Failed to reload booking", err)
		}
		if fresh.Status != model.BookingPending {
			return apperrors.InvalidTransition("accept", string(fresh.Status))
		}

		ok, err := s.scheduler.CanAcceptBooking(sessCtx, fresh.SitterID, fresh.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.SchedulingConflict("Sitter already has a booking overlapping this window")
		}

		now := time.Now().UTC()
		fresh.Status = model.BookingConfirmed
		fresh.AcceptedAt = &now
		if _, err := s.repo.Update(sessCtx, bookingID, fresh); err != nil {
			return apperrors.Internal("Failed to confirm booking", err)
		}

		if err := s.sync.markInProgress(sessCtx, fresh.RequestID); err != nil {
			return err
		}

		accepted = fresh
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to accept booking", "id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking accepted",
		"id", accepted.ID,
		"request_id", accepted.RequestID,
		"sitter_id", accepted.SitterID,
	)
	s.notifier.Publish(ctx, model.NewBookingEvent(model.EventBookingAccepted, accepted))
	s.publishReminder(ctx, accepted)

	return accepted, nil
}

// Reject declines a pending application. The care request stays open so
// other applications remain in play.
func (s *bookingService) Reject(ctx context.Context, bookingID, actorID, reason string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID {
		return nil, apperrors.Forbidden("Only the request owner can reject an application")
	}

	var rejected *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		fresh, err := s.repo.FindByID(sessCtx, bookingID)
		if err != nil {
			return apperrors.Internal("Failed to reload booking", err)
		}
		if fresh.Status != model.BookingPending {
			return apperrors.InvalidTransition("reject", string(fresh.Status))
		}

		now := time.Now().UTC()
		fresh.Status = model.BookingRejected
		fresh.CancellationReason = sanitizer.NormalizeNotes(reason)
		fresh.CancelledAt = &now
		if _, err := s.repo.Update(sessCtx, bookingID, fresh); err != nil {
			return apperrors.Internal("Failed to reject booking", err)
		}

		rejected = fresh
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reject booking", "id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking rejected", "id", rejected.ID, "request_id", rejected.RequestID)
	s.notifier.Publish(ctx, model.NewBookingEvent(model.EventBookingRejected, rejected))

	return rejected, nil
}

// Cancel withdraws a pending or confirmed booking. Either party may
// cancel. Cancelling a confirmed booking reopens the care request.
func (s *bookingService) Cancel(ctx context.Context, bookingID, actorID, reason string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID && booking.SitterID != actorID {
		return nil, apperrors.Forbidden("Only the owner or the sitter can cancel a booking")
	}

	var cancelled *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		fresh, err := s.repo.FindByID(sessCtx, bookingID)
		if err != nil {
			return apperrors.Internal("Failed to reload booking", err)
		}
		if !fresh.Status.CanBeCancelled() {
			return apperrors.InvalidTransition("cancel", string(fresh.Status))
		}
		wasConfirmed := fresh.Status == model.BookingConfirmed

		now := time.Now().UTC()
		fresh.Status = model.BookingCancelled
		fresh.CancellationReason = sanitizer.NormalizeNotes(reason)
		fresh.CancelledAt = &now
		if _, err := s.repo.Update(sessCtx, bookingID, fresh); err != nil {
			return apperrors.Internal("Failed to cancel booking", err)
		}

		if wasConfirmed {
			if err := s.sync.reopen(sessCtx, fresh.RequestID); err != nil {
				return err
			}
		}

		cancelled = fresh
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled", "id", cancelled.ID, "request_id", cancelled.RequestID)
	s.notifier.Publish(ctx, model.NewBookingEvent(model.EventBookingCancelled, cancelled))

	return cancelled, nil
}

// Start moves a confirmed booking to in_progress once its window has
// opened. Only the sitter may start the service.
func (s *bookingService) Start(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SitterID != actorID {
		return nil, apperrors.Forbidden("Only the sitter can start the booking")
	}

	var started *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		fresh, err := s.repo.FindByID(sessCtx, bookingID)
		if err != nil {
			return apperrors.Internal("Failed to reload booking", err)
		}
		now := time.Now().UTC()
		if fresh.Status != model.BookingConfirmed {
			return apperrors.InvalidTransition("start", string(fresh.Status))
		}
		if !fresh.CanBeStarted(now) {
			return apperrors.Conflict("Booking cannot start before its start date")
		}

		fresh.Status = model.BookingInProgress
		if _, err := s.repo.Update(sessCtx, bookingID, fresh); err != nil {
			return apperrors.Internal("Failed to start booking", err)
		}

		started = fresh
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to start booking", "id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking started", "id", started.ID, "sitter_id", started.SitterID)
	s.notifier.Publish(ctx, model.NewBookingEvent(model.EventBookingStarted, started))

	return started, nil
}

// Complete closes an in-progress booking once its window has passed and
// marks the care request completed in the same transaction.
func (s *bookingService) Complete(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SitterID != actorID {
		return nil, apperrors.Forbidden("Only the sitter can complete the booking")
	}

	var completed *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		fresh, err := s.repo.FindByID(sessCtx, bookingID)
		if err != nil {
			return apperrors.Internal("Failed to reload booking", err)
		}
		now := time.Now().UTC()
		if fresh.Status != model.BookingInProgress {
			return apperrors.InvalidTransition("complete", string(fresh.Status))
		}
		if !fresh.CanBeCompleted(now) {
			return apperrors.Conflict("Booking cannot be completed before its end date")
		}

		fresh.Status = model.BookingCompleted
		fresh.CompletedAt = &now
		if _, err := s.repo.Update(sessCtx, bookingID, fresh); err != nil {
			return apperrors.Internal("Failed to complete booking", err)
		}

		if err := s.sync.markCompleted(sessCtx, fresh.RequestID); err != nil {
			return err
		}

		completed = fresh
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to complete booking", "id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking completed", "id", completed.ID, "request_id", completed.RequestID)
	s.notifier.Publish(ctx, model.NewBookingEvent(model.EventBookingCompleted, completed))

	return completed, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetByRequestAndSitter(ctx context.Context, requestID, sitterID string) (*model.Booking, error) {
	if requestID == "" || sitterID == "" {
		return nil, apperrors.InvalidInput("Request ID and sitter ID are required")
	}

	booking, err := s.repo.FindByRequestAndSitter(ctx, requestID, sitterID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Booking")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetBySitter(ctx context.Context, sitterID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.Search(ctx, &model.BookingFilter{SitterID: sitterID}, limit, offset)
}

func (s *bookingService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.Search(ctx, &model.BookingFilter{OwnerID: ownerID}, limit, offset)
}

func (s *bookingService) Search(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if filter == nil {
		return nil, 0, apperrors.InvalidInput("Search filter is required")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByFilter(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by filter", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByFilter(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search bookings", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to search bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// ActiveForUser lists the user's pending, confirmed and in-progress
// bookings, as sitter or owner.
func (s *bookingService) ActiveForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	statuses := []model.BookingStatus{
		model.BookingPending,
		model.BookingConfirmed,
		model.BookingInProgress,
	}
	bookings, err := s.repo.FindForUser(ctx, userID, statuses, false)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve active bookings", err)
	}

	return bookings, nil
}

// HistoryForUser lists the user's closed bookings, newest first.
func (s *bookingService) HistoryForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	statuses := []model.BookingStatus{
		model.BookingCompleted,
		model.BookingCancelled,
	}
	bookings, err := s.repo.FindForUser(ctx, userID, statuses, true)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve booking history", err)
	}

	return bookings, nil
}

// acquireSitterLock creates the advisory lock serializing acceptance for
// one sitter. Returns the lock ID, or a conflict error when another
// acceptance holds it.
func (s *bookingService) acquireSitterLock(ctx context.Context, sitterID string) (string, error) {
	lockID := fmt.Sprintf("sitter_lock_%s", sitterID)

	now := time.Now().UTC()
	lock := &model.SitterLock{
		ID:        lockID,
		ExpiresAt: now.Add(s.cfg.SitterLockTTL),
		CreatedAt: now,
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another acceptance for this sitter is in progress. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire sitter lock", err)
	}

	return lockID, nil
}

// publishReminder emits a reminder event scheduled ahead of the booking
// start. Nothing is emitted when the lead time has already passed.
func (s *bookingService) publishReminder(ctx context.Context, booking *model.Booking) {
	remindAt := booking.StartDate.Add(-s.cfg.ReminderLeadTime)
	if !remindAt.After(time.Now().UTC()) {
		return
	}

	event := model.NewBookingEvent(model.EventBookingReminder, booking)
	event.ScheduledFor = &remindAt
	s.notifier.Publish(ctx, event)
}
