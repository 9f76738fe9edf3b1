package models

import "time"

// Notification kinds written by the engine
const (
	NotificationReaction        = "reaction"
	NotificationComment         = "comment"
	NotificationShare           = "share"
	NotificationJoinRequest     = "join_request"
	NotificationRequestAccepted = "request_accepted"
	NotificationFriendRequest   = "friend_request"
	NotificationFriendAccepted  = "friend_accepted"
)

// Notification is an outbox record kept in PostgreSQL. The engine only ever
// appends; read/mark-read traffic comes from the notification endpoints.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     string    `json:"actor_id" gorm:"size:36;index"`
	RecipientID string    `json:"recipient_id" gorm:"size:36;index"`
	TargetID    string    `json:"target_id"`                  // post, comment, community or request id
	TargetType  string    `json:"target_type" gorm:"size:20"` // post, comment, community, user
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
