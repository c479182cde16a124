package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "petsitter/internal/bookings/errors"
	requestserrors "petsitter/internal/requests/errors"
	"petsitter/internal/requests/repository"
	"petsitter/internal/requests/validator"
	"petsitter/pkg/config"
	mongotx "petsitter/pkg/db/mongo"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
)

// Mock care request repository for testing
type mockRequestRepository struct {
	createFunc func(ctx context.Context, request *model.CareRequest) error
	searchFunc func(ctx context.Context, filter *repository.SearchFilter, limit int, offset int64) ([]*model.CareRequest, error)

	requests map[string]*model.CareRequest
	deleted  []string
}

func newMockRequestRepository(requests ...*model.CareRequest) *mockRequestRepository {
	m := &mockRequestRepository{requests: map[string]*model.CareRequest{}}
	for _, r := range requests {
		m.requests[r.ID] = r
	}
	return m
}

func (m *mockRequestRepository) Create(ctx context.Context, request *model.CareRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = "665f1f77bcf86cd799439011"
	m.requests[request.ID] = request
	return nil
}

func (m *mockRequestRepository) FindByID(ctx context.Context, id string) (*model.CareRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, requestserrors.ErrNotFound
	}
	return r, nil
}

func (m *mockRequestRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.CareRequest, error) {
	return []*model.CareRequest{}, nil
}

func (m *mockRequestRepository) Search(ctx context.Context, filter *repository.SearchFilter, limit int, offset int64) ([]*model.CareRequest, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter, limit, offset)
	}
	return []*model.CareRequest{}, nil
}

func (m *mockRequestRepository) CountBySearch(ctx context.Context, filter *repository.SearchFilter) (int64, error) {
	return 0, nil
}

func (m *mockRequestRepository) Update(ctx context.Context, id string, request *model.CareRequest) (*mongo.UpdateResult, error) {
	m.requests[id] = request
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockRequestRepository) UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error {
	r, ok := m.requests[id]
	if !ok {
		return requestserrors.ErrNotFound
	}
	r.Status = status
	return nil
}

func (m *mockRequestRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.requests[id]; !ok {
		return requestserrors.ErrNotFound
	}
	delete(m.requests, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockRequestRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Mock booking repository; only the active-booking lookup matters here.
type stubBookingRepository struct {
	activeByRequest *model.Booking
}

func (m *stubBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *stubBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *stubBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *stubBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{}, nil
}

func (m *stubBookingRepository) FindByFilter(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *stubBookingRepository) CountByFilter(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	return 0, nil
}

func (m *stubBookingRepository) FindActiveBySitter(ctx context.Context, sitterID string, start, end time.Time) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *stubBookingRepository) FindPendingByRequest(ctx context.Context, requestID string, excludeID string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *stubBookingRepository) FindByRequestAndSitter(ctx context.Context, requestID, sitterID string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *stubBookingRepository) FindActiveByRequest(ctx context.Context, requestID string) (*model.Booking, error) {
	if m.activeByRequest != nil {
		return m.activeByRequest, nil
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *stubBookingRepository) FindForUser(ctx context.Context, userID string, statuses []model.BookingStatus, newestFirst bool) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *stubBookingRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *stubBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{Log: log}
}

func newService(repo *mockRequestRepository, bookings *stubBookingRepository) CareRequestService {
	cfg := testConfig()
	return &careRequestService{
		repo:      repo,
		bookings:  bookings,
		validator: validator.NewCareRequestValidator(cfg.Log),
		cfg:       cfg,
	}
}

func validRequest() *model.CareRequest {
	now := time.Now().UTC()
	return &model.CareRequest{
		ID:        "665f1f77bcf86cd799439011",
		Title:     "Weekend cat sitting",
		CareType:  model.CarePetSitting,
		StartDate: now.AddDate(0, 0, 7),
		EndDate:   now.AddDate(0, 0, 10),
		Budget:    120,
		Status:    model.RequestOpen,
		OwnerID:   "owner-1",
		PetID:     "pet-1",
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return apperrors.AsAppError(err).Code
}

func TestCreate_ForcesOpenStatus(t *testing.T) {
	repo := newMockRequestRepository()
	svc := newService(repo, &stubBookingRepository{})

	request := validRequest()
	request.ID = ""
	request.Title = "  Weekend   cat sitting "
	request.Status = model.RequestCompleted

	if err := svc.Create(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != model.RequestOpen {
		t.Errorf("expected status forced to open, got %s", request.Status)
	}
	if request.Title != "Weekend cat sitting" {
		t.Errorf("expected normalized title, got %q", request.Title)
	}
}

func TestCreate_PastWindow(t *testing.T) {
	svc := newService(newMockRequestRepository(), &stubBookingRepository{})

	request := validRequest()
	request.ID = ""
	request.StartDate = time.Now().UTC().AddDate(0, 0, -10)
	request.EndDate = time.Now().UTC().AddDate(0, 0, -7)

	err := svc.Create(context.Background(), request)
	if code := errCode(t, err); code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, code)
	}
}

func TestUpdate_OnlyOwner(t *testing.T) {
	request := validRequest()
	svc := newService(newMockRequestRepository(request), &stubBookingRepository{})

	_, err := svc.Update(context.Background(), request.ID, "somebody-else", &model.CareRequestUpdate{Title: "New title"})
	if code := errCode(t, err); code != apperrors.CodeForbidden {
		t.Errorf("expected %s, got %s", apperrors.CodeForbidden, code)
	}
}

func TestUpdate_OnlyOpenRequests(t *testing.T) {
	request := validRequest()
	request.Status = model.RequestInProgress
	svc := newService(newMockRequestRepository(request), &stubBookingRepository{})

	_, err := svc.Update(context.Background(), request.ID, request.OwnerID, &model.CareRequestUpdate{Title: "New title"})
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, code)
	}
}

func TestUpdate_DatesMoveTogether(t *testing.T) {
	request := validRequest()
	svc := newService(newMockRequestRepository(request), &stubBookingRepository{})

	start := time.Now().UTC().AddDate(0, 0, 14)
	_, err := svc.Update(context.Background(), request.ID, request.OwnerID, &model.CareRequestUpdate{StartDate: &start})
	if code := errCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %s", apperrors.CodeValidation, code)
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	request := validRequest()
	svc := newService(newMockRequestRepository(request), &stubBookingRepository{})

	budget := 200.0
	updated, err := svc.Update(context.Background(), request.ID, request.OwnerID, &model.CareRequestUpdate{
		Title:  "Long weekend cat sitting",
		Budget: &budget,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Long weekend cat sitting" {
		t.Errorf("unexpected title %q", updated.Title)
	}
	if updated.Budget != 200 {
		t.Errorf("expected budget 200, got %v", updated.Budget)
	}
	if updated.CareType != request.CareType {
		t.Error("expected untouched fields preserved")
	}
}

func TestDelete_BlockedByActiveBooking(t *testing.T) {
	request := validRequest()
	bookings := &stubBookingRepository{
		activeByRequest: &model.Booking{ID: "booking-1", Status: model.BookingConfirmed},
	}
	repo := newMockRequestRepository(request)
	svc := newService(repo, bookings)

	err := svc.Delete(context.Background(), request.ID, request.OwnerID)
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, code)
	}
	if len(repo.deleted) != 0 {
		t.Error("expected no deletion")
	}
}

func TestDelete_Succeeds(t *testing.T) {
	request := validRequest()
	repo := newMockRequestRepository(request)
	svc := newService(repo, &stubBookingRepository{})

	if err := svc.Delete(context.Background(), request.ID, request.OwnerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != request.ID {
		t.Errorf("expected request deleted, got %v", repo.deleted)
	}
}

func TestSearchOpen_ForcesOpenStatus(t *testing.T) {
	var gotFilter *repository.SearchFilter
	repo := newMockRequestRepository()
	repo.searchFunc = func(ctx context.Context, filter *repository.SearchFilter, limit int, offset int64) ([]*model.CareRequest, error) {
		gotFilter = filter
		return []*model.CareRequest{}, nil
	}
	svc := newService(repo, &stubBookingRepository{})

	_, _, err := svc.SearchOpen(context.Background(), &repository.SearchFilter{Term: "cat"}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter == nil || gotFilter.Status != model.RequestOpen {
		t.Errorf("expected status forced to open, got %+v", gotFilter)
	}
	if gotFilter.Term != "cat" {
		t.Errorf("expected term preserved, got %q", gotFilter.Term)
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := newService(newMockRequestRepository(), &stubBookingRepository{})

	err := svc.UpdateStatus(context.Background(), "665f1f77bcf86cd799439011", model.RequestStatus("bogus"))
	if code := errCode(t, err); code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, code)
	}
}
