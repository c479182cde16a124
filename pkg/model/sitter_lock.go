package model

import "time"

// SitterLock is an advisory lock serializing booking acceptance per
// sitter. The unique _id makes concurrent Accept calls for the same
// sitter collide at the storage layer, which holds across service
// instances. ExpiresAt is TTL-indexed so abandoned locks clear themselves.
type SitterLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
