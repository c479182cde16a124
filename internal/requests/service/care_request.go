package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "petsitter/internal/bookings/errors"
	bookingsrepo "petsitter/internal/bookings/repository"
	requestserrors "petsitter/internal/requests/errors"
	"petsitter/internal/requests/repository"
	"petsitter/internal/requests/validator"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"
	"petsitter/pkg/sanitizer"
)

// CareRequestService owns the care request CRUD surface. Lifecycle
// status beyond creation is driven by the booking service; owners only
// edit open requests, and a request with an active booking cannot be
// deleted.
type CareRequestService interface {
	Create(ctx context.Context, request *model.CareRequest) error
	GetByID(ctx context.Context, id string) (*model.CareRequest, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.CareRequest, int64, error)
	GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.CareRequest, int64, error)
	SearchOpen(ctx context.Context, filter *repository.SearchFilter, limit int, offset int64) ([]*model.CareRequest, int64, error)
	Update(ctx context.Context, id, actorID string, updates *model.CareRequestUpdate) (*model.CareRequest, error)
	UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error
	Delete(ctx context.Context, id, actorID string) error
}

type careRequestService struct {
	repo      repository.CareRequestRepository
	bookings  bookingsrepo.BookingRepository
	validator *validator.CareRequestValidator
	cfg       *config.Config
}

func NewCareRequestService(
	repo repository.CareRequestRepository,
	bookings bookingsrepo.BookingRepository,
	validator *validator.CareRequestValidator,
	cfg *config.Config,
) CareRequestService {
	return &careRequestService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *careRequestService) Create(ctx context.Context, request *model.CareRequest) error {
	s.sanitize(request)
	// Requests always enter the pool open, whatever the caller sent.
	request.Status = model.RequestOpen

	if err := s.validator.Validate(request); err != nil {
		s.cfg.Log.Warn("Care request validation failed", "owner_id", request.OwnerID, "error", err)
		return apperrors.Validation("Invalid care request", map[string]any{"error": err.Error()})
	}

	if !request.EndDate.After(time.Now().UTC()) {
		return apperrors.InvalidInput("Care request window must end in the future")
	}

	if err := s.repo.Create(ctx, request); err != nil {
		s.cfg.Log.Error("Failed to create care request", "owner_id", request.OwnerID, "error", err)
		return apperrors.Internal("Failed to create care request", err)
	}

	s.cfg.Log.Info("Care request created",
		"id", request.ID,
		"owner_id", request.OwnerID,
		"care_type", request.CareType,
	)
	return nil
}

func (s *careRequestService) GetByID(ctx context.Context, id string) (*model.CareRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Care request ID cannot be empty")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Care request", id)
		}
		if errors.Is(err, requestserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid care request ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve care request", err)
	}

	return request, nil
}

func (s *careRequestService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.CareRequest, int64, error) {

	var count int64
	var requests []*model.CareRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count care requests", "error", errCount)
			errCount = apperrors.Internal("Failed to count care requests", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		requests, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list care requests", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve care requests", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return requests, count, nil
}

func (s *careRequestService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.CareRequest, int64, error) {
	if ownerID == "" {
		return nil, 0, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	filter := &repository.SearchFilter{OwnerID: ownerID}
	return s.search(ctx, filter, limit, offset)
}

// SearchOpen searches the open request pool. The open status is forced
// so closed requests never surface to browsing sitters.
func (s *careRequestService) SearchOpen(ctx context.Context, filter *repository.SearchFilter, limit int, offset int64) ([]*model.CareRequest, int64, error) {
	if filter == nil {
		filter = &repository.SearchFilter{}
	}
	filter.Status = model.RequestOpen

	return s.search(ctx, filter, limit, offset)
}

func (s *careRequestService) search(ctx context.Context, filter *repository.SearchFilter, limit int, offset int64) ([]*model.CareRequest, int64, error) {

	var count int64
	var requests []*model.CareRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountBySearch(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count care requests by search", "error", errCount)
			errCount = apperrors.Internal("Failed to count care requests", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		requests, errFind = s.repo.Search(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search care requests", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to search care requests", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return requests, count, nil
}

func (s *careRequestService) Update(ctx context.Context, id, actorID string, updates *model.CareRequestUpdate) (*model.CareRequest, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != actorID {
		return nil, apperrors.Forbidden("Only the owner can update a care request")
	}
	if existing.Status != model.RequestOpen {
		return nil, apperrors.Conflict("Only open care requests can be updated")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Care request update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid care request update", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Invalid care request", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update care request", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update care request", err)
	}

	s.cfg.Log.Info("Care request updated", "id", id)
	return merged, nil
}

func (s *careRequestService) UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error {
	if !status.IsValid() {
		return apperrors.InvalidInput("Unknown care request status: " + string(status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, requestserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Care request", id)
		}
		s.cfg.Log.Error("Failed to update care request status", "id", id, "status", status, "error", err)
		return apperrors.Internal("Failed to update care request status", err)
	}

	s.cfg.Log.Info("Care request status updated", "id", id, "status", status)
	return nil
}

// Delete removes an owner's request. The active-booking check and the
// delete run in one transaction so an acceptance in flight cannot orphan
// its booking.
func (s *careRequestService) Delete(ctx context.Context, id, actorID string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != actorID {
		return apperrors.Forbidden("Only the owner can delete a care request")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		_, err := s.bookings.FindActiveByRequest(sessCtx, id)
		if err == nil {
			return apperrors.Conflict("Care request has an active booking and cannot be deleted")
		}
		if !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check bookings for care request", err)
		}

		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, requestserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Care request", id)
			}
			return apperrors.Internal("Failed to delete care request", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete care request", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Care request deleted", "id", id)
	return nil
}

func (s *careRequestService) sanitize(request *model.CareRequest) {
	request.Title = sanitizer.NormalizeTitle(request.Title)
	request.Description = sanitizer.NormalizeNotes(request.Description)
	request.Location = sanitizer.TrimAndNormalize(request.Location)
	request.SpecialInstructions = sanitizer.NormalizeNotes(request.SpecialInstructions)
}

func (s *careRequestService) merge(existing *model.CareRequest, updates *model.CareRequestUpdate) *model.CareRequest {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.StartDate != nil {
		merged.StartDate = *updates.StartDate
	}
	if updates.EndDate != nil {
		merged.EndDate = *updates.EndDate
	}
	if updates.Budget != nil {
		merged.Budget = *updates.Budget
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.SpecialInstructions != nil {
		merged.SpecialInstructions = *updates.SpecialInstructions
	}

	return &merged
}
