package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	requestserrors "petsitter/internal/requests/errors"
	"petsitter/pkg/config"
	mongotx "petsitter/pkg/db/mongo"
	"petsitter/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Care_requests"
)

// SearchFilter narrows open-request discovery queries.
type SearchFilter struct {
	OwnerID  string
	Status   model.RequestStatus
	CareType model.CareType
	Term     string
	MinLat   *float64
	MaxLat   *float64
	MinLng   *float64
	MaxLng   *float64
}

type CareRequestRepository interface {
	Create(ctx context.Context, request *model.CareRequest) error
	FindByID(ctx context.Context, id string) (*model.CareRequest, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.CareRequest, error)
	Search(ctx context.Context, filter *SearchFilter, limit int, offset int64) ([]*model.CareRequest, error)
	CountBySearch(ctx context.Context, filter *SearchFilter) (int64, error)
	Update(ctx context.Context, id string, request *model.CareRequest) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCareRequestRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoCareRequestRepository(cfg *config.Config) CareRequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCareRequestRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCareRequestRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCareRequestRepository) Create(ctx context.Context, request *model.CareRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	request.CreatedAt = now
	request.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create care request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCareRequestRepository) FindByID(ctx context.Context, id string) (*model.CareRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", requestserrors.ErrInvalidID, id)
	}

	var request model.CareRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, requestserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find care request: %w", err)
	}

	return &request, nil
}

func (r *mongoCareRequestRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.CareRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find care requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.CareRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode care requests: %w", err)
	}

	return requests, nil
}

func (r *mongoCareRequestRepository) Search(ctx context.Context, filter *SearchFilter, limit int, offset int64) ([]*model.CareRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search care requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.CareRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode care requests: %w", err)
	}

	return requests, nil
}

func (r *mongoCareRequestRepository) CountBySearch(ctx context.Context, filter *SearchFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count care requests by search: %w", err)
	}
	return count, nil
}

func (r *mongoCareRequestRepository) Update(ctx context.Context, id string, request *model.CareRequest) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", requestserrors.ErrInvalidID, id)
	}

	request.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"title":                request.Title,
			"description":          request.Description,
			"start_date":           request.StartDate,
			"end_date":             request.EndDate,
			"budget":               request.Budget,
			"location":             request.Location,
			"latitude":             request.Latitude,
			"longitude":            request.Longitude,
			"special_instructions": request.SpecialInstructions,
			"status":               request.Status,
			"updated_at":           request.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update care request: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, requestserrors.ErrNotFound
	}

	return result, nil
}

// UpdateStatus flips only the lifecycle status. Used by the booking
// service's request synchronizer inside its transactions.
func (r *mongoCareRequestRepository) UpdateStatus(ctx context.Context, id string, status model.RequestStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", requestserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update care request status: %w", err)
	}

	if result.MatchedCount == 0 {
		return requestserrors.ErrNotFound
	}

	return nil
}

func (r *mongoCareRequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", requestserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete care request: %w", err)
	}

	if result.DeletedCount == 0 {
		return requestserrors.ErrNotFound
	}

	return nil
}

func (r *mongoCareRequestRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count care requests: %w", err)
	}

	return count, nil
}

func (r *mongoCareRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildSearchFilter(filter *SearchFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}

	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.CareType != "" {
		query["care_type"] = filter.CareType
	}
	if filter.Term != "" {
		query["title"] = bson.M{"$regex": filter.Term, "$options": "i"}
	}

	lat := bson.M{}
	if filter.MinLat != nil {
		lat["$gte"] = *filter.MinLat
	}
	if filter.MaxLat != nil {
		lat["$lte"] = *filter.MaxLat
	}
	if len(lat) > 0 {
		query["latitude"] = lat
	}

	lng := bson.M{}
	if filter.MinLng != nil {
		lng["$gte"] = *filter.MinLng
	}
	if filter.MaxLng != nil {
		lng["$lte"] = *filter.MaxLng
	}
	if len(lng) > 0 {
		query["longitude"] = lng
	}

	return query
}
