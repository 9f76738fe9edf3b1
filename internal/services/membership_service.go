package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MembershipService drives the group/page membership lifecycle:
// NonMember -> Requested -> Member -> (Admin) -> NonMember for groups, and
// the simpler follow/unfollow model for pages. Departures cascade through the
// cleanup service.
type MembershipService struct {
	communities repositories.CommunityRepository
	users       repositories.UserGraphRepository
	cleanup     *CleanupService
	outbox      *NotificationService
	log         *logrus.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	communities repositories.CommunityRepository,
	users repositories.UserGraphRepository,
	cleanup *CleanupService,
	outbox *NotificationService,
	log *logrus.Logger,
) *MembershipService {
	return &MembershipService{
		communities: communities,
		users:       users,
		cleanup:     cleanup,
		outbox:      outbox,
		log:         log,
	}
}

// JoinGroup joins a public group immediately or queues a join request for a
// members_only group
func (s *MembershipService) JoinGroup(ctx context.Context, groupID, viewerID string) (*models.JoinRequest, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.RoleOf(viewerID) != models.RoleNone {
		return nil, apperrors.Conflict("already a member of this group")
	}

	if group.Privacy == models.GroupMembersOnly {
		if _, pending := group.PendingRequest(viewerID); pending {
			return nil, apperrors.Conflict("join request already pending")
		}
		request := models.JoinRequest{
			RequestID: uuid.NewString(),
			UserID:    viewerID,
			CreatedAt: time.Now(),
		}
		if err := s.communities.AddJoinRequest(ctx, groupID, request); err != nil {
			if errors.Is(err, repositories.ErrStaleDocument) {
				return nil, apperrors.Conflict("already a member or request already pending")
			}
			return nil, err
		}
		s.notifyModerators(group, &models.Notification{
			Type:       models.NotificationJoinRequest,
			ActorID:    viewerID,
			TargetID:   groupID,
			TargetType: "community",
			Message:    "requested to join " + group.Name,
		})
		return &request, nil
	}

	if err := s.addMember(ctx, group, viewerID); err != nil {
		return nil, err
	}
	return nil, nil
}

// HandleJoinRequest approves or denies a queued join request. Both outcomes
// remove the request; a stale request id reports NotFound.
func (s *MembershipService) HandleJoinRequest(ctx context.Context, groupID, requestID string, accept bool, viewerID string) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.RoleOf(viewerID) < models.RoleAdmin {
		return apperrors.Forbidden("only group admins can handle join requests")
	}
	request, ok := group.RequestByID(requestID)
	if !ok {
		return apperrors.NotFound("join request not found")
	}

	if !accept {
		if err := s.communities.RemoveJoinRequest(ctx, groupID, requestID); err != nil {
			if errors.Is(err, repositories.ErrStaleDocument) {
				return apperrors.NotFound("join request not found")
			}
			return err
		}
		return nil
	}

	// AddMember clears the queued request in the same update
	if err := s.addMember(ctx, group, request.UserID); err != nil {
		return err
	}
	s.outbox.Push(&models.Notification{
		Type:        models.NotificationRequestAccepted,
		ActorID:     viewerID,
		RecipientID: request.UserID,
		TargetID:    groupID,
		TargetType:  "community",
		Message:     "your request to join " + group.Name + " was accepted",
	})
	return nil
}

// ExitGroup is the self-initiated departure. The owner cannot exit; they must
// delete the group instead.
func (s *MembershipService) ExitGroup(ctx context.Context, groupID, viewerID string) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	role := group.RoleOf(viewerID)
	if role == models.RoleOwner {
		return apperrors.Forbidden("the owner cannot exit the group")
	}
	if role == models.RoleNone {
		return apperrors.Conflict("not a member of this group")
	}
	return s.cleanup.RemoveDepartingMember(ctx, group, viewerID)
}

// ExpelMember is the admin/owner-initiated removal. Admins cannot expel
// themselves, the owner, or other admins; only the owner may expel an admin.
func (s *MembershipService) ExpelMember(ctx context.Context, groupID, targetID, viewerID string) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	actorRole := group.RoleOf(viewerID)
	if actorRole < models.RoleAdmin {
		return apperrors.Forbidden("only group admins can expel members")
	}
	if targetID == viewerID {
		return apperrors.Forbidden("use exit to leave the group")
	}
	targetRole := group.RoleOf(targetID)
	if targetRole == models.RoleOwner {
		return apperrors.Forbidden("the owner cannot be expelled")
	}
	if targetRole == models.RoleNone {
		return apperrors.Conflict("user is not a member of this group")
	}
	if targetRole == models.RoleAdmin && actorRole != models.RoleOwner {
		return apperrors.Forbidden("only the owner can expel an admin")
	}
	return s.cleanup.RemoveDepartingMember(ctx, group, targetID)
}

// ToggleAdmin promotes a member to admin or demotes an admin back to member.
// Promotion is owner-only; demotion is owner-initiated or an admin removing
// themself. The owner's implicit privileges cannot be granted or revoked.
func (s *MembershipService) ToggleAdmin(ctx context.Context, groupID, targetID, viewerID string) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	actorRole := group.RoleOf(viewerID)
	targetRole := group.RoleOf(targetID)

	if targetRole == models.RoleOwner {
		return apperrors.Forbidden("the owner's role cannot be changed")
	}

	switch targetRole {
	case models.RoleAdmin:
		if actorRole != models.RoleOwner && viewerID != targetID {
			return apperrors.Forbidden("only the owner can demote another admin")
		}
		if err := s.communities.RemoveAdmin(ctx, groupID, targetID); err != nil {
			if errors.Is(err, repositories.ErrStaleDocument) {
				return apperrors.Conflict("user is no longer an admin")
			}
			return err
		}
		if err := s.users.RemoveCommunityRef(ctx, targetID, group.Kind, groupID); err != nil && !apperrors.IsNotFound(err) {
			s.logMirrorFailure(groupID, targetID, err)
		}
		if err := s.users.AddCommunityRef(ctx, targetID, group.Kind, models.RoleMember, groupID); err != nil && !apperrors.IsNotFound(err) {
			s.logMirrorFailure(groupID, targetID, err)
		}
		return nil

	case models.RoleMember:
		if actorRole != models.RoleOwner {
			return apperrors.Forbidden("only the owner can promote an admin")
		}
		if err := s.communities.AddAdmin(ctx, groupID, targetID); err != nil {
			if errors.Is(err, repositories.ErrStaleDocument) {
				return apperrors.Conflict("user is already an admin or no longer a member")
			}
			return err
		}
		if err := s.users.RemoveCommunityRef(ctx, targetID, group.Kind, groupID); err != nil && !apperrors.IsNotFound(err) {
			s.logMirrorFailure(groupID, targetID, err)
		}
		if err := s.users.AddCommunityRef(ctx, targetID, group.Kind, models.RoleAdmin, groupID); err != nil && !apperrors.IsNotFound(err) {
			s.logMirrorFailure(groupID, targetID, err)
		}
		return nil
	}
	return apperrors.NotFound("user is not a member of this group")
}

// FollowPage adds the viewer as a follower of a page
func (s *MembershipService) FollowPage(ctx context.Context, pageID, viewerID string) error {
	page, err := s.getPage(ctx, pageID)
	if err != nil {
		return err
	}
	if page.RoleOf(viewerID) != models.RoleNone {
		return apperrors.Conflict("already following this page")
	}
	return s.addMember(ctx, page, viewerID)
}

// UnfollowPage removes the viewer from a page's followers. Page owners
// cannot unfollow their own page.
func (s *MembershipService) UnfollowPage(ctx context.Context, pageID, viewerID string) error {
	page, err := s.getPage(ctx, pageID)
	if err != nil {
		return err
	}
	role := page.RoleOf(viewerID)
	if role == models.RoleOwner {
		return apperrors.Forbidden("the owner cannot unfollow their own page")
	}
	if role == models.RoleNone {
		return apperrors.Conflict("not following this page")
	}
	if err := s.communities.RemoveMember(ctx, pageID, viewerID); err != nil {
		if errors.Is(err, repositories.ErrStaleDocument) {
			return apperrors.Conflict("not following this page")
		}
		return err
	}
	if err := s.users.RemoveCommunityRef(ctx, viewerID, page.Kind, pageID); err != nil && !apperrors.IsNotFound(err) {
		s.logMirrorFailure(pageID, viewerID, err)
	}
	return nil
}

// addMember applies the atomic membership insert and mirrors it into the
// user's graph document
func (s *MembershipService) addMember(ctx context.Context, community *models.Community, userID string) error {
	communityID := community.ID.Hex()
	if err := s.communities.AddMember(ctx, communityID, userID); err != nil {
		if errors.Is(err, repositories.ErrStaleDocument) {
			return apperrors.Conflict("already a member")
		}
		return err
	}
	if err := s.users.AddCommunityRef(ctx, userID, community.Kind, models.RoleMember, communityID); err != nil && !apperrors.IsNotFound(err) {
		s.logMirrorFailure(communityID, userID, err)
	}
	return nil
}

func (s *MembershipService) notifyModerators(community *models.Community, template *models.Notification) {
	recipients := append([]string{community.OwnerID}, community.Admins...)
	for _, r := range recipients {
		n := *template
		n.RecipientID = r
		s.outbox.Push(&n)
	}
}

func (s *MembershipService) getGroup(ctx context.Context, id string) (*models.Community, error) {
	community, err := s.communities.GetCommunityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community.Kind != models.CommunityGroup {
		return nil, apperrors.NotFound("group not found")
	}
	return community, nil
}

func (s *MembershipService) getPage(ctx context.Context, id string) (*models.Community, error) {
	community, err := s.communities.GetCommunityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community.Kind != models.CommunityPage {
		return nil, apperrors.NotFound("page not found")
	}
	return community, nil
}

func (s *MembershipService) logMirrorFailure(communityID, userID string, err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"community_id": communityID,
		"user_id":      userID,
	}).Warn("failed to update membership mirror")
}
