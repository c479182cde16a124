package repository

import (
	"context"

	"petsitter/pkg/config"
	"petsitter/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockCollectionName = "Sitter_locks"

// SitterLockRepository persists the advisory locks that serialize booking
// acceptance per sitter. The lock document's _id doubles as the lock key,
// so concurrent Create calls for the same sitter collide on the unique
// index rather than racing in application code.
type SitterLockRepository interface {
	Create(ctx context.Context, lock *model.SitterLock) (*model.SitterLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoSitterLockRepository struct {
	collection *mongo.Collection
}

func NewSitterLockRepository(cfg *config.Config) SitterLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSitterLockRepository{
		collection: db.Collection(lockCollectionName),
	}
}

// Create inserts the lock exactly as built by the caller, who owns the
// timestamps. A duplicate key error means another holder has the lock;
// callers translate that into a conflict.
func (r *mongoSitterLockRepository) Create(ctx context.Context, lock *model.SitterLock) (*model.SitterLock, error) {
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return nil, err
	}
	return lock, nil
}

// Delete releases the lock. Deleting an already-expired (TTL-reaped)
// lock is a no-op, not an error.
func (r *mongoSitterLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
