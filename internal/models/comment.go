package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post, stored in MongoDB.
// Community and CommunityID are copied from the parent post at creation so
// membership cleanup can find a member's comments without joining on posts.
type Comment struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID      string             `json:"post_id" bson:"post_id"`
	UserID      string             `json:"user_id" bson:"user_id"`
	Content     string             `json:"content" bson:"content"`
	Community   CommunityKind      `json:"community" bson:"community"`
	CommunityID string             `json:"community_id,omitempty" bson:"community_id,omitempty"`
	Media       []Media            `json:"media,omitempty" bson:"media,omitempty"`
	Reactions   ReactionMap        `json:"reactions" bson:"reactions"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string  `json:"content" validate:"required,min=1,max=1000"`
	Media   []Media `json:"media,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
