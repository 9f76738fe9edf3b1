package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story represents a user's story stored in MongoDB. Stories are visible to
// the owner and their friends until ExpiresAt.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Media     Media              `json:"media" bson:"media"`
	Type      string             `json:"type" bson:"type"` // "image" or "video"
	Duration  int                `json:"duration,omitempty" bson:"duration,omitempty"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	Media    Media  `json:"media" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=image video"`
	Duration int    `json:"duration,omitempty" validate:"omitempty,min=1,max=60"`
}
