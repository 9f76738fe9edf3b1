package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupPrivacy controls who may see a group's content
type GroupPrivacy string

const (
	GroupPublic      GroupPrivacy = "public"
	GroupMembersOnly GroupPrivacy = "members_only"
)

// Valid reports whether p is a known group privacy value
func (p GroupPrivacy) Valid() bool {
	return p == GroupPublic || p == GroupMembersOnly
}

// Role is a user's standing inside a community. Higher roles include the
// rights of lower ones.
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleAdmin
	RoleOwner
)

// JoinRequest is a pending membership application for a members_only group
type JoinRequest struct {
	RequestID string    `json:"request_id" bson:"request_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Community represents a page or group stored in MongoDB. The Members array
// is the membership edge of record; MembersCount rides the same document so
// both mutate in one atomic update. Owner never appears in Members or Admins.
type Community struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Kind         CommunityKind      `json:"kind" bson:"kind"` // page or group
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	OwnerID      string             `json:"owner_id" bson:"owner_id"`
	Admins       []string           `json:"admins" bson:"admins"`
	Members      []string           `json:"members" bson:"members"`
	MembersCount int                `json:"members_count" bson:"members_count"`
	Privacy      GroupPrivacy       `json:"privacy,omitempty" bson:"privacy,omitempty"` // groups only
	JoinRequests []JoinRequest      `json:"join_requests,omitempty" bson:"join_requests,omitempty"`
	ProfileMedia *Media             `json:"profile_media,omitempty" bson:"profile_media,omitempty"`
	CoverMedia   *Media             `json:"cover_media,omitempty" bson:"cover_media,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// RoleOf returns the user's role in the community
func (c *Community) RoleOf(userID string) Role {
	if userID == "" {
		return RoleNone
	}
	if c.OwnerID == userID {
		return RoleOwner
	}
	for _, a := range c.Admins {
		if a == userID {
			return RoleAdmin
		}
	}
	for _, m := range c.Members {
		if m == userID {
			return RoleMember
		}
	}
	return RoleNone
}

// PendingRequest returns the user's pending join request, if any
func (c *Community) PendingRequest(userID string) (JoinRequest, bool) {
	for _, r := range c.JoinRequests {
		if r.UserID == userID {
			return r, true
		}
	}
	return JoinRequest{}, false
}

// RequestByID returns the join request with the given id, if still queued
func (c *Community) RequestByID(requestID string) (JoinRequest, bool) {
	for _, r := range c.JoinRequests {
		if r.RequestID == requestID {
			return r, true
		}
	}
	return JoinRequest{}, false
}

// CreateCommunityRequest defines the request body for creating a page or group
type CreateCommunityRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=page group"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Privacy     string `json:"privacy,omitempty" validate:"omitempty,oneof=public members_only"`
}

// UpdateCommunityRequest defines the request body for updating a community profile
type UpdateCommunityRequest struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description  string `json:"description,omitempty" validate:"omitempty,max=1000"`
	ProfileMedia *Media `json:"profile_media,omitempty"`
	CoverMedia   *Media `json:"cover_media,omitempty"`
}
