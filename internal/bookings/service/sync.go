package service

import (
	"context"
	"errors"

	requestserrors "petsitter/internal/requests/errors"
	requestsrepo "petsitter/internal/requests/repository"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

// requestSync keeps the care request's status in step with its booking.
// Callers pass the transaction's session context so the request flip
// commits or aborts together with the booking write.
type requestSync struct {
	requests requestsrepo.CareRequestRepository
	log      *logger.Logger
}

func newRequestSync(requests requestsrepo.CareRequestRepository, log *logger.Logger) *requestSync {
	return &requestSync{
		requests: requests,
		log:      log,
	}
}

// markInProgress flips the request when an application is accepted.
func (r *requestSync) markInProgress(ctx context.Context, requestID string) error {
	return r.setStatus(ctx, requestID, model.RequestInProgress)
}

// reopen returns the request to the pool when its confirmed booking is
// cancelled before service starts.
func (r *requestSync) reopen(ctx context.Context, requestID string) error {
	return r.setStatus(ctx, requestID, model.RequestOpen)
}

// markCompleted closes the request when its booking completes.
func (r *requestSync) markCompleted(ctx context.Context, requestID string) error {
	return r.setStatus(ctx, requestID, model.RequestCompleted)
}

func (r *requestSync) setStatus(ctx context.Context, requestID string, status model.RequestStatus) error {
	if err := r.requests.UpdateStatus(ctx, requestID, status); err != nil {
		if errors.Is(err, requestserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Care request", requestID)
		}
		r.log.Error("Failed to sync care request status",
			"request_id", requestID,
			"status", status,
			"error", err,
		)
		return apperrors.Internal("Failed to update care request status", err)
	}

	r.log.Debug("Care request status synced", "request_id", requestID, "status", status)
	return nil
}
