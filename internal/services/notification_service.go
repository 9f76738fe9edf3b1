package services

import (
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// NotificationService is the engine's append-only outbox plus the read side
// for the notification endpoints. Pushes are fire-and-forget: a failed append
// is logged and never fails the operation that produced it.
type NotificationService struct {
	repo repositories.NotificationRepository
	log  *logrus.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repositories.NotificationRepository, log *logrus.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// Push appends a notification to the recipient's outbox
func (s *NotificationService) Push(n *models.Notification) {
	if n.RecipientID == "" || n.RecipientID == n.ActorID {
		return
	}
	if err := s.repo.CreateNotification(n); err != nil {
		s.log.WithFields(logrus.Fields{
			"type":      n.Type,
			"recipient": n.RecipientID,
			"target":    n.TargetID,
		}).WithError(err).Warn("failed to append notification")
	}
}

// List returns one page of a user's notifications with the total count
func (s *NotificationService) List(recipientID string, page, limit int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.GetByRecipientID(recipientID, page, limit)
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(recipientID string) (int64, error) {
	return s.repo.GetUnreadCount(recipientID)
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(recipientID string, notificationID uint) error {
	return s.repo.MarkAsRead(recipientID, notificationID)
}

// MarkAllRead flags every unread notification as read
func (s *NotificationService) MarkAllRead(recipientID string) error {
	return s.repo.MarkAllAsRead(recipientID)
}
