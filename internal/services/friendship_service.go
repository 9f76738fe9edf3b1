package services

import (
	"context"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// FriendshipService runs the friend-request state machine in PostgreSQL and,
// on acceptance, writes the friendship edge into both users' graph documents.
// Feeds and privacy read friendship from the graph docs only.
type FriendshipService struct {
	requests repositories.FriendshipRepository
	accounts repositories.AccountRepository
	users    repositories.UserGraphRepository
	outbox   *NotificationService
	log      *logrus.Logger
}

// NewFriendshipService creates a new FriendshipService
func NewFriendshipService(
	requests repositories.FriendshipRepository,
	accounts repositories.AccountRepository,
	users repositories.UserGraphRepository,
	outbox *NotificationService,
	log *logrus.Logger,
) *FriendshipService {
	return &FriendshipService{
		requests: requests,
		accounts: accounts,
		users:    users,
		outbox:   outbox,
		log:      log,
	}
}

// Send creates a pending friend request from viewer to receiver
func (s *FriendshipService) Send(ctx context.Context, viewerID, receiverID string) (*models.FriendRequest, error) {
	if receiverID == viewerID {
		return nil, apperrors.InvalidInput("cannot send a friend request to yourself")
	}
	if _, err := s.accounts.GetAccountByPublicID(receiverID); err != nil {
		return nil, err
	}
	viewer, err := s.users.GetUserGraph(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer.IsFriend(receiverID) {
		return nil, apperrors.Conflict("users are already friends")
	}

	req := &models.FriendRequest{SenderID: viewerID, ReceiverID: receiverID}
	if err := s.requests.SendFriendRequest(req); err != nil {
		return nil, err
	}
	s.outbox.Push(&models.Notification{
		Type:        models.NotificationFriendRequest,
		ActorID:     viewerID,
		RecipientID: receiverID,
		TargetID:    viewerID,
		TargetType:  "user",
		Message:     "sent you a friend request",
	})
	return req, nil
}

// Respond accepts or rejects a pending request; receiver only. Acceptance
// writes the edge into both graph documents.
func (s *FriendshipService) Respond(ctx context.Context, requestID uint, viewerID, status string) error {
	req, err := s.requests.GetFriendRequestByID(requestID)
	if err != nil {
		return err
	}
	if req.ReceiverID != viewerID {
		return apperrors.Forbidden("only the receiver can respond to this request")
	}
	if req.Status != models.FriendRequestPending {
		return apperrors.Conflict("friend request already resolved")
	}
	switch status {
	case models.FriendRequestAccepted, models.FriendRequestRejected:
	default:
		return apperrors.InvalidInput("status must be accepted or rejected")
	}

	if err := s.requests.UpdateFriendRequestStatus(requestID, status); err != nil {
		return err
	}
	if status != models.FriendRequestAccepted {
		return nil
	}

	if err := s.users.AddFriendEdge(ctx, req.SenderID, req.ReceiverID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"sender_id":   req.SenderID,
			"receiver_id": req.ReceiverID,
		}).Error("failed to write friendship edge")
		return apperrors.Internal("failed to record friendship", err)
	}
	s.outbox.Push(&models.Notification{
		Type:        models.NotificationFriendAccepted,
		ActorID:     viewerID,
		RecipientID: req.SenderID,
		TargetID:    viewerID,
		TargetType:  "user",
		Message:     "accepted your friend request",
	})
	return nil
}

// Cancel deletes a pending request; sender only
func (s *FriendshipService) Cancel(ctx context.Context, requestID uint, viewerID string) error {
	req, err := s.requests.GetFriendRequestByID(requestID)
	if err != nil {
		return err
	}
	if req.SenderID != viewerID {
		return apperrors.Forbidden("only the sender can cancel this request")
	}
	if req.Status != models.FriendRequestPending {
		return apperrors.Conflict("friend request already resolved")
	}
	return s.requests.DeleteFriendRequest(requestID)
}

// Unfriend removes the edge from both graph documents and drops the
// accepted request row so a fresh request can be sent later
func (s *FriendshipService) Unfriend(ctx context.Context, viewerID, friendID string) error {
	viewer, err := s.users.GetUserGraph(ctx, viewerID)
	if err != nil {
		return err
	}
	if !viewer.IsFriend(friendID) {
		return apperrors.Conflict("users are not friends")
	}
	if err := s.users.RemoveFriendEdge(ctx, viewerID, friendID); err != nil {
		return err
	}
	if req, err := s.requests.GetFriendRequestBetween(viewerID, friendID); err == nil {
		if err := s.requests.DeleteFriendRequest(req.ID); err != nil {
			s.log.WithError(err).WithField("request_id", req.ID).Warn("failed to drop resolved friend request")
		}
	} else if !apperrors.IsNotFound(err) {
		return err
	}
	return nil
}

// Pending lists the viewer's incoming pending requests
func (s *FriendshipService) Pending(ctx context.Context, viewerID string) ([]models.FriendRequest, error) {
	return s.requests.GetPendingFriendRequests(viewerID)
}

// Friends resolves the viewer's friends list to compact account profiles
func (s *FriendshipService) Friends(ctx context.Context, userID string) ([]models.AccountCompact, error) {
	graph, err := s.users.GetUserGraph(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.GetAccountsByPublicIDs(graph.Friends)
	if err != nil {
		return nil, err
	}
	out := make([]models.AccountCompact, 0, len(accounts))
	for i := range accounts {
		out = append(out, accounts[i].ToCompact())
	}
	return out, nil
}
