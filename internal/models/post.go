package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommunityKind scopes a content item to a personal timeline, a page or a group
type CommunityKind string

const (
	CommunityPersonal CommunityKind = "personal"
	CommunityPage     CommunityKind = "page"
	CommunityGroup    CommunityKind = "group"
)

// Valid reports whether k is a known community kind
func (k CommunityKind) Valid() bool {
	switch k {
	case CommunityPersonal, CommunityPage, CommunityGroup:
		return true
	}
	return false
}

// Privacy is the visibility rule attached to personal content.
// Community content is always PrivacyPublic.
type Privacy string

const (
	PrivacyPublic      Privacy = "public"
	PrivacyFriendsOnly Privacy = "friends_only"
	PrivacyOnlyMe      Privacy = "only_me"
)

// Valid reports whether p is a known privacy scope
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyFriendsOnly, PrivacyOnlyMe:
		return true
	}
	return false
}

// Media references a binary stored in the blob store
type Media struct {
	MediaID string `json:"media_id" bson:"media_id"`
	URL     string `json:"url" bson:"url"`
}

// ShareData is the denormalized share aggregate on a post
type ShareData struct {
	Count int      `json:"count" bson:"count"`
	Users []string `json:"users" bson:"users"`
}

// Post represents a post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"`
	Content       string             `json:"content" bson:"content"`
	Community     CommunityKind      `json:"community" bson:"community"`
	CommunityID   string             `json:"community_id,omitempty" bson:"community_id,omitempty"`
	Privacy       Privacy            `json:"privacy" bson:"privacy"`
	Media         []Media            `json:"media,omitempty" bson:"media,omitempty"`
	Reactions     ReactionMap        `json:"reactions" bson:"reactions"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	ShareData     ShareData          `json:"share_data" bson:"share_data"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// SharedBy reports whether the user already shared the post
func (p *Post) SharedBy(userID string) bool {
	for _, u := range p.ShareData.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content     string  `json:"content" validate:"required,min=1,max=2000"`
	Community   string  `json:"community" validate:"omitempty,oneof=personal page group"`
	CommunityID string  `json:"community_id,omitempty"`
	Privacy     string  `json:"privacy" validate:"omitempty,oneof=public friends_only only_me"`
	Media       []Media `json:"media,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content string `json:"content,omitempty" validate:"omitempty,min=1,max=2000"`
	Privacy string `json:"privacy,omitempty" validate:"omitempty,oneof=public friends_only only_me"`
}
