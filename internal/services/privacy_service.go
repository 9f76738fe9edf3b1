package services

import (
	"context"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
)

// PrivacyService decides whether a viewer may read or act on a content item.
// The viewer id is always explicit; an empty string is an anonymous reader.
// Reads that fail the decision table surface as NotFound so invisible content
// cannot be probed for existence.
type PrivacyService struct {
	users       repositories.UserGraphRepository
	communities repositories.CommunityRepository
	posts       repositories.PostRepository
}

// NewPrivacyService creates a new PrivacyService
func NewPrivacyService(
	users repositories.UserGraphRepository,
	communities repositories.CommunityRepository,
	posts repositories.PostRepository,
) *PrivacyService {
	return &PrivacyService{users: users, communities: communities, posts: posts}
}

// CanViewPost evaluates the visibility decision table, first match wins
func (s *PrivacyService) CanViewPost(ctx context.Context, viewerID string, post *models.Post) (bool, error) {
	switch post.Community {
	case models.CommunityPersonal:
		switch post.Privacy {
		case models.PrivacyPublic:
			return true, nil
		case models.PrivacyFriendsOnly:
			if viewerID == "" {
				return false, nil
			}
			if viewerID == post.UserID {
				return true, nil
			}
			owner, err := s.users.GetUserGraph(ctx, post.UserID)
			if err != nil {
				if apperrors.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}
			return owner.IsFriend(viewerID), nil
		case models.PrivacyOnlyMe:
			return viewerID != "" && viewerID == post.UserID, nil
		}
		return false, nil

	case models.CommunityPage:
		// page content is always public
		return true, nil

	case models.CommunityGroup:
		community, err := s.communities.GetCommunityByID(ctx, post.CommunityID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		if community.Privacy == models.GroupMembersOnly {
			return community.RoleOf(viewerID) >= models.RoleMember, nil
		}
		return true, nil
	}
	return false, nil
}

// RequireViewPost is CanViewPost with the NotFound translation applied
func (s *PrivacyService) RequireViewPost(ctx context.Context, viewerID string, post *models.Post) error {
	ok, err := s.CanViewPost(ctx, viewerID, post)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("post not found")
	}
	return nil
}

// VisibleParentPost resolves a comment's parent and applies the inherited
// privacy decision. A deleted parent makes the comment NotFound, not a
// privacy failure.
func (s *PrivacyService) VisibleParentPost(ctx context.Context, viewerID string, comment *models.Comment) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, comment.PostID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("comment not found")
		}
		return nil, err
	}
	if err := s.RequireViewPost(ctx, viewerID, post); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("comment not found")
		}
		return nil, err
	}
	return post, nil
}

// CanEditPost allows only the content owner to edit
func (s *PrivacyService) CanEditPost(viewerID string, post *models.Post) bool {
	return viewerID != "" && viewerID == post.UserID
}

// CanDeletePost allows the content owner, and for community content the
// hosting community's owner or (groups only) its admins
func (s *PrivacyService) CanDeletePost(ctx context.Context, viewerID string, post *models.Post) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	if viewerID == post.UserID {
		return true, nil
	}
	if post.Community == models.CommunityPersonal {
		return false, nil
	}

	community, err := s.communities.GetCommunityByID(ctx, post.CommunityID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return community.RoleOf(viewerID) >= models.RoleAdmin, nil
}

// CanDeleteComment mirrors CanDeletePost for comments: the comment owner, or
// the hosting community's owner/admins via the parent post's scope
func (s *PrivacyService) CanDeleteComment(ctx context.Context, viewerID string, comment *models.Comment) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	if viewerID == comment.UserID {
		return true, nil
	}
	if comment.Community == models.CommunityPersonal {
		return false, nil
	}

	community, err := s.communities.GetCommunityByID(ctx, comment.CommunityID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return community.RoleOf(viewerID) >= models.RoleAdmin, nil
}

// TimelinePrivacies returns the privacy scopes of targetID's timeline the
// viewer may see
func (s *PrivacyService) TimelinePrivacies(ctx context.Context, viewerID, targetID string) ([]models.Privacy, error) {
	if viewerID == targetID && viewerID != "" {
		return []models.Privacy{models.PrivacyPublic, models.PrivacyFriendsOnly, models.PrivacyOnlyMe}, nil
	}
	if viewerID == "" {
		return []models.Privacy{models.PrivacyPublic}, nil
	}
	target, err := s.users.GetUserGraph(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsFriend(viewerID) {
		return []models.Privacy{models.PrivacyPublic, models.PrivacyFriendsOnly}, nil
	}
	return []models.Privacy{models.PrivacyPublic}, nil
}
