package services

import (
	"context"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/media"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// CommunityService manages page/group creation, profile updates and the
// owner-only deletion with its full cascade.
type CommunityService struct {
	communities repositories.CommunityRepository
	users       repositories.UserGraphRepository
	cleanup     *CleanupService
	blobs       media.BlobStore
	log         *logrus.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	communities repositories.CommunityRepository,
	users repositories.UserGraphRepository,
	cleanup *CleanupService,
	blobs media.BlobStore,
	log *logrus.Logger,
) *CommunityService {
	return &CommunityService{
		communities: communities,
		users:       users,
		cleanup:     cleanup,
		blobs:       blobs,
		log:         log,
	}
}

// Create makes a new page or group with the viewer as owner
func (s *CommunityService) Create(ctx context.Context, req *models.CreateCommunityRequest, viewerID string) (*models.Community, error) {
	if viewerID == "" {
		return nil, apperrors.Forbidden("sign in to create a community")
	}
	kind := models.CommunityKind(req.Kind)
	if kind != models.CommunityPage && kind != models.CommunityGroup {
		return nil, apperrors.InvalidInput("community kind must be page or group")
	}

	community := &models.Community{
		Kind:        kind,
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     viewerID,
	}
	if kind == models.CommunityGroup {
		community.Privacy = models.GroupPublic
		if req.Privacy != "" {
			privacy := models.GroupPrivacy(req.Privacy)
			if !privacy.Valid() {
				return nil, apperrors.InvalidInput("unknown group privacy")
			}
			community.Privacy = privacy
		}
	} else if req.Privacy != "" {
		return nil, apperrors.InvalidInput("pages do not take a privacy setting")
	}

	if err := s.communities.CreateCommunity(ctx, community); err != nil {
		return nil, err
	}
	if err := s.users.AddCommunityRef(ctx, viewerID, kind, models.RoleOwner, community.ID.Hex()); err != nil && !apperrors.IsNotFound(err) {
		s.log.WithError(err).WithField("community_id", community.ID.Hex()).Warn("failed to mirror ownership")
	}
	return community, nil
}

// Get retrieves a community. Membership state (join request queue) is only
// exposed to the owner and admins.
func (s *CommunityService) Get(ctx context.Context, id, viewerID string) (*models.Community, error) {
	community, err := s.communities.GetCommunityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community.RoleOf(viewerID) < models.RoleAdmin {
		community.JoinRequests = nil
	}
	return community, nil
}

// Update edits the community profile; owner or admin only. Replaced profile
// or cover media is deleted from the blob store best-effort.
func (s *CommunityService) Update(ctx context.Context, id string, req *models.UpdateCommunityRequest, viewerID string) error {
	community, err := s.communities.GetCommunityByID(ctx, id)
	if err != nil {
		return err
	}
	if community.RoleOf(viewerID) < models.RoleAdmin {
		return apperrors.Forbidden("only the owner or admins can edit the community")
	}

	var replaced []string
	if req.ProfileMedia != nil && community.ProfileMedia != nil {
		replaced = append(replaced, community.ProfileMedia.MediaID)
	}
	if req.CoverMedia != nil && community.CoverMedia != nil {
		replaced = append(replaced, community.CoverMedia.MediaID)
	}

	if err := s.communities.UpdateCommunity(ctx, id, req); err != nil {
		return err
	}
	if len(replaced) > 0 {
		if err := s.blobs.Delete(ctx, replaced); err != nil {
			s.log.WithError(err).WithField("community_id", id).Warn("failed to delete replaced community media")
		}
	}
	return nil
}

// Delete removes a community entirely; owner only. Cascades to every scoped
// post, comment, media reference and membership mirror.
func (s *CommunityService) Delete(ctx context.Context, id, viewerID string) error {
	community, err := s.communities.GetCommunityByID(ctx, id)
	if err != nil {
		return err
	}
	if community.OwnerID != viewerID {
		return apperrors.Forbidden("only the owner can delete the community")
	}
	return s.cleanup.DeleteCommunity(ctx, community)
}
