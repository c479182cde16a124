package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

// Mock service for testing
type mockBookingService struct {
	applyFunc  func(ctx context.Context, in *model.ApplyInput) (*model.Booking, error)
	acceptFunc func(ctx context.Context, bookingID, actorID string) (*model.Booking, error)
	searchFunc func(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
}

func (m *mockBookingService) Apply(ctx context.Context, in *model.ApplyInput) (*model.Booking, error) {
	if m.applyFunc != nil {
		return m.applyFunc(ctx, in)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) Accept(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	if m.acceptFunc != nil {
		return m.acceptFunc(ctx, bookingID, actorID)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) Reject(ctx context.Context, bookingID, actorID, reason string) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, bookingID, actorID, reason string) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockBookingService) Start(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockBookingService) Complete(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) GetByRequestAndSitter(ctx context.Context, requestID, sitterID string) (*model.Booking, error) {
	return nil, apperrors.NotFound("Booking")
}

func (m *mockBookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) GetBySitter(ctx context.Context, sitterID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Search(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) ActiveForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingService) HistoryForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, testLogger()).RegisterRoutes(router)
	return router
}

func TestApplyHandler(t *testing.T) {
	var received *model.ApplyInput
	svc := &mockBookingService{
		applyFunc: func(ctx context.Context, in *model.ApplyInput) (*model.Booking, error) {
			received = in
			return &model.Booking{ID: "booking-1", Status: model.BookingPending}, nil
		},
	}
	router := newRouter(svc)

	body := `{"request_id":"665f1f77bcf86cd799439011","sitter_id":"sitter-1","notes":"hi","amount":50}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if received == nil || received.SitterID != "sitter-1" || received.Amount != 50 {
		t.Errorf("unexpected decoded input: %+v", received)
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ID != "booking-1" {
		t.Errorf("expected booking-1 in response, got %q", resp.Data.ID)
	}
}

func TestApplyHandler_InvalidBody(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAcceptHandler(t *testing.T) {
	var gotID, gotActor string
	svc := &mockBookingService{
		acceptFunc: func(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
			gotID, gotActor = bookingID, actorID
			return &model.Booking{ID: bookingID, Status: model.BookingConfirmed}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/booking-1/accept", strings.NewReader(`{"actor_id":"owner-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != "booking-1" || gotActor != "owner-1" {
		t.Errorf("expected booking-1/owner-1, got %s/%s", gotID, gotActor)
	}
}

func TestAcceptHandler_MissingActor(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/booking-1/accept", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, resp.Code)
	}
}

func TestAcceptHandler_PropagatesConflict(t *testing.T) {
	svc := &mockBookingService{
		acceptFunc: func(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
			return nil, apperrors.SchedulingConflict("Sitter already has a booking overlapping this window")
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/booking-1/accept", strings.NewReader(`{"actor_id":"owner-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestSearchHandler_Filters(t *testing.T) {
	var gotFilter *model.BookingFilter
	svc := &mockBookingService{
		searchFunc: func(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotFilter = filter
			return []*model.Booking{}, 0, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/search?sitter_id=sitter-1&status=confirmed&start=2026-06-01&end=2026-06-30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotFilter == nil || gotFilter.SitterID != "sitter-1" {
		t.Fatalf("unexpected filter: %+v", gotFilter)
	}
	if gotFilter.Status != model.BookingConfirmed {
		t.Error("expected confirmed status filter")
	}
	if gotFilter.StartTime == nil || !gotFilter.StartTime.Equal(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start bound: %v", gotFilter.StartTime)
	}
}

func TestSearchHandler_UnknownStatus(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/search?status=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
