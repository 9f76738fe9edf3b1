package models

import "gorm.io/gorm"

// Friend request states
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest represents a friend request between two users (PostgreSQL).
// Acceptance writes the friendship edge into both users' graph documents;
// this row is only the request's state machine.
type FriendRequest struct {
	gorm.Model
	SenderID   string `json:"sender_id" gorm:"size:36;index"`
	ReceiverID string `json:"receiver_id" gorm:"size:36;index"`
	Status     string `json:"status" gorm:"type:varchar(20);default:'pending'"`
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
}

// UpdateFriendRequest defines the request body for accepting/rejecting a friend request
type UpdateFriendRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}
