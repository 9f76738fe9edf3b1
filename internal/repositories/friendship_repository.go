package repositories

import (
	"errors"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friend request data operations
type FriendshipRepository interface {
	SendFriendRequest(req *models.FriendRequest) error
	GetFriendRequestByID(id uint) (*models.FriendRequest, error)
	GetFriendRequestBetween(userA, userB string) (*models.FriendRequest, error)
	GetPendingFriendRequests(userID string) ([]models.FriendRequest, error)
	UpdateFriendRequestStatus(id uint, status string) error
	DeleteFriendRequest(id uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// SendFriendRequest creates a new friend request unless one already links the pair
func (r *PostgresFriendshipRepository) SendFriendRequest(req *models.FriendRequest) error {
	existing, err := r.GetFriendRequestBetween(req.SenderID, req.ReceiverID)
	if err == nil {
		switch existing.Status {
		case models.FriendRequestPending:
			return apperrors.Conflict("a pending friend request already exists between these users")
		case models.FriendRequestAccepted:
			return apperrors.Conflict("users are already friends")
		}
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	req.Status = models.FriendRequestPending
	if err := r.db.Create(req).Error; err != nil {
		return apperrors.Internal("failed to create friend request", err)
	}
	return nil
}

// GetFriendRequestByID retrieves a friend request by ID
func (r *PostgresFriendshipRepository) GetFriendRequestByID(id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("friend request not found")
		}
		return nil, apperrors.Internal("friend request lookup failed", err)
	}
	return &req, nil
}

// GetFriendRequestBetween retrieves the request linking two users in either direction
func (r *PostgresFriendshipRepository) GetFriendRequestBetween(userA, userB string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("friend request not found")
		}
		return nil, apperrors.Internal("friend request lookup failed", err)
	}
	return &req, nil
}

// GetPendingFriendRequests retrieves all pending friend requests addressed to a user
func (r *PostgresFriendshipRepository) GetPendingFriendRequests(userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.db.Where("receiver_id = ? AND status = ?", userID, models.FriendRequestPending).Find(&requests).Error; err != nil {
		return nil, apperrors.Internal("friend request lookup failed", err)
	}
	return requests, nil
}

// UpdateFriendRequestStatus updates the status of a friend request
func (r *PostgresFriendshipRepository) UpdateFriendRequestStatus(id uint, status string) error {
	return r.db.Model(&models.FriendRequest{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteFriendRequest deletes a friend request
func (r *PostgresFriendshipRepository) DeleteFriendRequest(id uint) error {
	return r.db.Delete(&models.FriendRequest{}, id).Error
}
