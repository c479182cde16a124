package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "petsitter/internal/bookings/errors"
	"petsitter/internal/bookings/validator"
	requestserrors "petsitter/internal/requests/errors"
	requestsrepo "petsitter/internal/requests/repository"
	schedservice "petsitter/internal/scheduling/service"
	"petsitter/pkg/config"
	mongotx "petsitter/pkg/db/mongo"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
	"petsitter/pkg/notify"
)

// Mock booking repository for testing
type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking

	findActiveBySitterFunc func(ctx context.Context, sitterID string, start, end time.Time) ([]*model.Booking, error)
	createFunc             func(ctx context.Context, booking *model.Booking) error
}

func newMockBookingRepo(bookings ...*model.Booking) *mockBookingRepo {
	m := &mockBookingRepo{bookings: map[string]*model.Booking{}}
	for _, b := range bookings {
		copied := *b
		m.bookings[b.ID] = &copied
	}
	return m
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.ID == "" {
		booking.ID = "generated-id"
	}
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepo) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *booking
	copied.ID = id
	m.bookings[id] = &copied
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockBookingRepo) FindByFilter(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepo) CountByFilter(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepo) FindActiveBySitter(ctx context.Context, sitterID string, start, end time.Time) ([]*model.Booking, error) {
	if m.findActiveBySitterFunc != nil {
		return m.findActiveBySitterFunc(ctx, sitterID, start, end)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []*model.Booking{}
	for _, b := range m.bookings {
		if b.SitterID != sitterID || !b.Status.IsActive() {
			continue
		}
		if b.StartDate.Before(end) && b.EndDate.After(start) {
			copied := *b
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (m *mockBookingRepo) FindPendingByRequest(ctx context.Context, requestID string, excludeID string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepo) FindByRequestAndSitter(ctx context.Context, requestID, sitterID string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.RequestID == requestID && b.SitterID == sitterID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepo) FindActiveByRequest(ctx context.Context, requestID string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepo) FindForUser(ctx context.Context, userID string, statuses []model.BookingStatus, newestFirst bool) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Mock sitter lock repository
type mockLockRepo struct {
	createFunc func(ctx context.Context, lock *model.SitterLock) (*model.SitterLock, error)
	created    []string
	acquired   []*model.SitterLock
	deleted    []string
}

func (m *mockLockRepo) Create(ctx context.Context, lock *model.SitterLock) (*model.SitterLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	m.created = append(m.created, lock.ID)
	m.acquired = append(m.acquired, lock)
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

// Mock care request repository
type mockRequestRepo struct {
	requests      map[string]*model.CareRequest
	statusUpdates []model.RequestStatus
}

func newMockRequestRepo(requests ...*model.CareRequest) *mockRequestRepo {
	m := &mockRequestRepo{requests: map[string]*model.CareRequest{}}
	for _, r := range requests {
		m.requests[r.ID] = r
	}
	return m
}

func (m *mockRequestRepo) Create(ctx context.Context, request *model.CareRequest) error {
	return nil
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*model.CareRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, requestserrors.ErrNotFound
	}
	return r, nil
}

func (m *mockRequestRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.CareRequest, error) {
	return []*model.CareRequest{}, nil
}

func (m *mockRequestRepo) Search(ctx context.Context, filter *requestsrepo.SearchFilter, limit int, offset int64) ([]*model.CareRequest, error) {
	return []*model.CareRequest{}, nil
}

func (m *mockRequestRepo) CountBySearch(ctx context.Context, filter *requestsrepo.SearchFilter) (int64, error) {
	return 0, nil
}

func (m *mockRequestRepo) Update(ctx context.Context, id string, request *model.CareRequest) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error {
	if _, ok := m.requests[id]; !ok {
		return requestserrors.ErrNotFound
	}
	m.requests[id].Status = status
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

func (m *mockRequestRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockRequestRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockRequestRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Recording notifier
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.BookingEvent
}

func (n *recordingNotifier) Publish(ctx context.Context, event model.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []model.BookingEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]model.BookingEventType, 0, len(n.events))
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}

func serviceConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:               log,
		MaxBookingsPerDay: 1,
		SitterLockTTL:     10 * time.Second,
		ReminderLeadTime:  24 * time.Hour,
	}
}

func newService(repo *mockBookingRepo, locks *mockLockRepo, requests *mockRequestRepo, notifier notify.Notifier, cfg *config.Config) BookingService {
	scheduler := schedservice.NewSchedulingService(repo, cfg)
	return &bookingService{
		repo:      repo,
		lockRepo:  locks,
		requests:  requests,
		scheduler: scheduler,
		validator: validator.NewBookingValidator(cfg.Log),
		notifier:  notifier,
		sync:      newRequestSync(requests, cfg.Log),
		cfg:       cfg,
	}
}

func openRequest() *model.CareRequest {
	now := time.Now().UTC()
	return &model.CareRequest{
		ID:        "665f1f77bcf86cd799439011",
		Title:     "Cat sitting over the weekend",
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
	appErr := apperrors.AsAppError(err)
	return appErr.Code
}

func TestApply_CreatesPendingBooking(t *testing.T) {
	request := openRequest()
	repo := newMockBookingRepo()
	notifier := &recordingNotifier{}
	svc := newService(repo, &mockLockRepo{}, newMockRequestRepo(request), notifier, serviceConfig())

	booking, err := svc.Apply(context.Background(), &model.ApplyInput{
		RequestID: request.ID,
		SitterID:  "sitter-1",
		Notes:     "  happy   to help  ",
		Amount:    100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
	if booking.OwnerID != request.OwnerID {
		t.Errorf("expected denormalized owner %s, got %s", request.OwnerID, booking.OwnerID)
	}
	if !booking.StartDate.Equal(request.StartDate) || !booking.EndDate.Equal(request.EndDate) {
		t.Error("expected booking dates copied from the request")
	}
	if booking.Notes != "happy to help" {
		t.Errorf("expected normalized notes, got %q", booking.Notes)
	}
	if types := notifier.types(); len(types) != 1 || types[0] != model.EventBookingApplied {
		t.Errorf("expected a single booking.applied event, got %v", types)
	}
}

func TestApply_OwnRequest(t *testing.T) {
	request := openRequest()
	svc := newService(newMockBookingRepo(), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Apply(context.Background(), &model.ApplyInput{
		RequestID: request.ID,
		SitterID:  request.OwnerID,
	})
	if code := errCode(t, err); code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, code)
	}
}

func TestApply_RequestNotOpen(t *testing.T) {
	request := openRequest()
	request.Status = model.RequestInProgress
	svc := newService(newMockBookingRepo(), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Apply(context.Background(), &model.ApplyInput{
		RequestID: request.ID,
		SitterID:  "sitter-1",
	})
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, code)
	}
}

func TestApply_DuplicateApplication(t *testing.T) {
	request := openRequest()
	existing := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	svc := newService(newMockBookingRepo(existing), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Apply(context.Background(), &model.ApplyInput{
		RequestID: request.ID,
		SitterID:  "sitter-1",
	})
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, code)
	}
}

func TestApply_AfterRejection(t *testing.T) {
	request := openRequest()
	rejected := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingRejected,
	}
	svc := newService(newMockBookingRepo(rejected), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	booking, err := svc.Apply(context.Background(), &model.ApplyInput{
		RequestID: request.ID,
		SitterID:  "sitter-1",
	})
	if err != nil {
		t.Fatalf("expected re-application after rejection to succeed, got %v", err)
	}
	if booking.Status != model.BookingPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
}

func TestAccept_Succeeds(t *testing.T) {
	request := openRequest()
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	repo := newMockBookingRepo(pending)
	locks := &mockLockRepo{}
	requests := newMockRequestRepo(request)
	notifier := &recordingNotifier{}
	svc := newService(repo, locks, requests, notifier, serviceConfig())

	accepted, err := svc.Accept(context.Background(), pending.ID, request.OwnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if accepted.Status != model.BookingConfirmed {
		t.Errorf("expected confirmed status, got %s", accepted.Status)
	}
	if accepted.AcceptedAt == nil {
		t.Error("expected accepted_at to be set")
	}
	if len(requests.statusUpdates) != 1 || requests.statusUpdates[0] != model.RequestInProgress {
		t.Errorf("expected request synced to in_progress, got %v", requests.statusUpdates)
	}
	if len(locks.created) != 1 || locks.created[0] != "sitter_lock_sitter-1" {
		t.Errorf("expected sitter lock acquired, got %v", locks.created)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("expected sitter lock released, got %v", locks.deleted)
	}
	if len(locks.acquired) == 1 {
		lock := locks.acquired[0]
		if lock.CreatedAt.Location() != time.UTC {
			t.Errorf("expected lock created_at in UTC, got %v", lock.CreatedAt.Location())
		}
		if want := lock.CreatedAt.Add(serviceConfig().SitterLockTTL); !lock.ExpiresAt.Equal(want) {
			t.Errorf("expected lock to expire at %s, got %s", want, lock.ExpiresAt)
		}
	}

	types := notifier.types()
	if len(types) != 2 || types[0] != model.EventBookingAccepted || types[1] != model.EventBookingReminder {
		t.Fatalf("expected accepted + reminder events, got %v", types)
	}
	reminder := notifier.events[1]
	if reminder.ScheduledFor == nil {
		t.Fatal("expected reminder to carry a scheduled_for instant")
	}
	want := accepted.StartDate.Add(-24 * time.Hour)
	if !reminder.ScheduledFor.Equal(want) {
		t.Errorf("expected reminder at %s, got %s", want, reminder.ScheduledFor)
	}
}

func TestAccept_NoReminderForImminentStart(t *testing.T) {
	now := time.Now().UTC()
	request := openRequest()
	request.StartDate = now.Add(2 * time.Hour)
	request.EndDate = now.AddDate(0, 0, 2)
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	notifier := &recordingNotifier{}
	svc := newService(newMockBookingRepo(pending), &mockLockRepo{}, newMockRequestRepo(request), notifier, serviceConfig())

	if _, err := svc.Accept(context.Background(), pending.ID, request.OwnerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if types := notifier.types(); len(types) != 1 || types[0] != model.EventBookingAccepted {
		t.Errorf("expected only the accepted event, got %v", types)
	}
}

func TestAccept_WrongActor(t *testing.T) {
	request := openRequest()
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	svc := newService(newMockBookingRepo(pending), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Accept(context.Background(), pending.ID, "sitter-1")
	if code := errCode(t, err); code != apperrors.CodeForbidden {
		t.Errorf("expected %s, got %s", apperrors.CodeForbidden, code)
	}
}

func TestAccept_SchedulingConflict(t *testing.T) {
	request := openRequest()
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	overlapping := &model.Booking{
		ID:        "booking-2",
		RequestID: "665f1f77bcf86cd799439099",
		SitterID:  "sitter-1",
		OwnerID:   "owner-2",
		StartDate: request.StartDate.AddDate(0, 0, 1),
		EndDate:   request.EndDate.AddDate(0, 0, 1),
		Status:    model.BookingConfirmed,
	}
	svc := newService(newMockBookingRepo(pending, overlapping), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Accept(context.Background(), pending.ID, request.OwnerID)
	if code := errCode(t, err); code != apperrors.CodeSchedulingConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeSchedulingConflict, code)
	}
}

func TestAccept_TouchingBookingIsNotAConflict(t *testing.T) {
	request := openRequest()
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	touching := &model.Booking{
		ID:        "booking-2",
		RequestID: "665f1f77bcf86cd799439099",
		SitterID:  "sitter-1",
		OwnerID:   "owner-2",
		StartDate: request.EndDate,
		EndDate:   request.EndDate.AddDate(0, 0, 3),
		Status:    model.BookingConfirmed,
	}
	svc := newService(newMockBookingRepo(pending, touching), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	accepted, err := svc.Accept(context.Background(), pending.ID, request.OwnerID)
	if err != nil {
		t.Fatalf("expected touching ranges to be accepted, got %v", err)
	}
	if accepted.Status != model.BookingConfirmed {
		t.Errorf("expected confirmed status, got %s", accepted.Status)
	}
}

func TestAccept_NotPending(t *testing.T) {
	request := openRequest()
	confirmed := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingConfirmed,
	}
	svc := newService(newMockBookingRepo(confirmed), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Accept(context.Background(), confirmed.ID, request.OwnerID)
	if code := errCode(t, err); code != apperrors.CodeInvalidTransition {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidTransition, code)
	}
}

func TestAccept_LockHeld(t *testing.T) {
	request := openRequest()
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	locks := &mockLockRepo{
		createFunc: func(ctx context.Context, lock *model.SitterLock) (*model.SitterLock, error) {
			return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		},
	}
	svc := newService(newMockBookingRepo(pending), locks, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Accept(context.Background(), pending.ID, request.OwnerID)
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, code)
	}
}

func TestReject_LeavesRequestUntouched(t *testing.T) {
	request := openRequest()
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	requests := newMockRequestRepo(request)
	notifier := &recordingNotifier{}
	svc := newService(newMockBookingRepo(pending), &mockLockRepo{}, requests, notifier, serviceConfig())

	rejected, err := svc.Reject(context.Background(), pending.ID, request.OwnerID, "found someone else")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rejected.Status != model.BookingRejected {
		t.Errorf("expected rejected status, got %s", rejected.Status)
	}
	if rejected.CancellationReason != "found someone else" {
		t.Errorf("unexpected reason %q", rejected.CancellationReason)
	}
	if rejected.CancelledAt == nil {
		t.Error("expected cancelled_at to be set")
	}
	if len(requests.statusUpdates) != 0 {
		t.Errorf("expected no request status change, got %v", requests.statusUpdates)
	}
	if types := notifier.types(); len(types) != 1 || types[0] != model.EventBookingRejected {
		t.Errorf("expected a single booking.rejected event, got %v", types)
	}
}

func TestCancel_FromConfirmedReopensRequest(t *testing.T) {
	request := openRequest()
	request.Status = model.RequestInProgress
	confirmed := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingConfirmed,
	}
	requests := newMockRequestRepo(request)
	svc := newService(newMockBookingRepo(confirmed), &mockLockRepo{}, requests, &recordingNotifier{}, serviceConfig())

	cancelled, err := svc.Cancel(context.Background(), confirmed.ID, "sitter-1", "emergency")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cancelled.Status != model.BookingCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}
	if len(requests.statusUpdates) != 1 || requests.statusUpdates[0] != model.RequestOpen {
		t.Errorf("expected request reopened, got %v", requests.statusUpdates)
	}
}

func TestCancel_PendingKeepsRequestUntouched(t *testing.T) {
	request := openRequest()
	pending := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingPending,
	}
	requests := newMockRequestRepo(request)
	svc := newService(newMockBookingRepo(pending), &mockLockRepo{}, requests, &recordingNotifier{}, serviceConfig())

	if _, err := svc.Cancel(context.Background(), pending.ID, pending.OwnerID, "changed plans"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests.statusUpdates) != 0 {
		t.Errorf("expected no request status change, got %v", requests.statusUpdates)
	}
}

func TestCancel_WrongActor(t *testing.T) {
	request := openRequest()
	confirmed := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingConfirmed,
	}
	svc := newService(newMockBookingRepo(confirmed), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Cancel(context.Background(), confirmed.ID, "somebody-else", "")
	if code := errCode(t, err); code != apperrors.CodeForbidden {
		t.Errorf("expected %s, got %s", apperrors.CodeForbidden, code)
	}
}

func TestCancel_TerminalBooking(t *testing.T) {
	request := openRequest()
	completed := &model.Booking{
		ID:        "booking-1",
		RequestID: request.ID,
		SitterID:  "sitter-1",
		OwnerID:   request.OwnerID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
		Status:    model.BookingCompleted,
	}
	svc := newService(newMockBookingRepo(completed), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

	_, err := svc.Cancel(context.Background(), completed.ID, "sitter-1", "")
	if code := errCode(t, err); code != apperrors.CodeInvalidTransition {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidTransition, code)
	}
}

func TestStart(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		start    time.Time
		actorID  string
		wantCode string
	}{
		{"window open", now.Add(-time.Hour), "sitter-1", ""},
		{"before start date", now.Add(48 * time.Hour), "sitter-1", apperrors.CodeConflict},
		{"owner cannot start", now.Add(-time.Hour), "owner-1", apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := openRequest()
			confirmed := &model.Booking{
				ID:        "booking-1",
				RequestID: request.ID,
				SitterID:  "sitter-1",
				OwnerID:   "owner-1",
				StartDate: tt.start,
				EndDate:   tt.start.AddDate(0, 0, 3),
				Status:    model.BookingConfirmed,
			}
			svc := newService(newMockBookingRepo(confirmed), &mockLockRepo{}, newMockRequestRepo(request), &recordingNotifier{}, serviceConfig())

			started, err := svc.Start(context.Background(), confirmed.ID, tt.actorID)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if started.Status != model.BookingInProgress {
					t.Errorf("expected in_progress status, got %s", started.Status)
				}
				return
			}
			if code := errCode(t, err); code != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, code)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	now := time.Now().UTC()
	request := openRequest()
	request.Status = model.RequestInProgress

	tests := []struct {
		name     string
		end      time.Time
		actorID  string
		wantCode string
	}{
		{"window passed", now.Add(-time.Hour), "sitter-1", ""},
		{"before end date", now.Add(48 * time.Hour), "sitter-1", apperrors.CodeConflict},
		{"owner cannot complete", now.Add(-time.Hour), "owner-1", apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inProgress := &model.Booking{
				ID:        "booking-1",
				RequestID: request.ID,
				SitterID:  "sitter-1",
				OwnerID:   "owner-1",
				StartDate: tt.end.AddDate(0, 0, -3),
				EndDate:   tt.end,
				Status:    model.BookingInProgress,
			}
			requests := newMockRequestRepo(request)
			svc := newService(newMockBookingRepo(inProgress), &mockLockRepo{}, requests, &recordingNotifier{}, serviceConfig())

			completed, err := svc.Complete(context.Background(), inProgress.ID, tt.actorID)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if completed.Status != model.BookingCompleted {
					t.Errorf("expected completed status, got %s", completed.Status)
				}
				if completed.CompletedAt == nil {
					t.Error("expected completed_at to be set")
				}
				if len(requests.statusUpdates) != 1 || requests.statusUpdates[0] != model.RequestCompleted {
					t.Errorf("expected request synced to completed, got %v", requests.statusUpdates)
				}
				return
			}
			if code := errCode(t, err); code != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, code)
			}
		})
	}
}
