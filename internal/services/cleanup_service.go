package services

import (
	"context"
	"errors"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/media"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// CleanupService runs the cascading deletions that follow a member leaving a
// community or a community being deleted. The store has no multi-document
// transactions, so the procedure is idempotent and safe to re-run: counters
// are recomputed by aggregation, membership removal is a guarded update, and
// secondary failures (media, mirrors) are logged without blocking the
// structural delete.
type CleanupService struct {
	posts       repositories.PostRepository
	comments    repositories.CommentRepository
	users       repositories.UserGraphRepository
	communities repositories.CommunityRepository
	blobs       media.BlobStore
	log         *logrus.Logger
}

// NewCleanupService creates a new CleanupService
func NewCleanupService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	users repositories.UserGraphRepository,
	communities repositories.CommunityRepository,
	blobs media.BlobStore,
	log *logrus.Logger,
) *CleanupService {
	return &CleanupService{
		posts:       posts,
		comments:    comments,
		users:       users,
		communities: communities,
		blobs:       blobs,
		log:         log,
	}
}

// RemoveDepartingMember removes a member's content from the community and
// then the membership edge itself. Keyed by (community, user); re-running
// after a partial failure converges to the same end state.
func (c *CleanupService) RemoveDepartingMember(ctx context.Context, community *models.Community, userID string) error {
	communityID := community.ID.Hex()

	// 1. the member's own posts in this community
	posts, err := c.posts.FindByOwnerInCommunity(ctx, community.Kind, communityID, userID)
	if err != nil {
		return err
	}
	postIDs := make([]string, 0, len(posts))
	mediaIDs := make([]string, 0)
	for _, p := range posts {
		postIDs = append(postIDs, p.ID.Hex())
		for _, m := range p.Media {
			mediaIDs = append(mediaIDs, m.MediaID)
		}
	}

	// 2. comments on those posts plus the member's comments elsewhere in the
	// community
	comments, err := c.comments.FindForCleanup(ctx, postIDs, userID, community.Kind, communityID)
	if err != nil {
		return err
	}
	deletedPosts := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		deletedPosts[id] = true
	}
	commentIDs := make([]string, 0, len(comments))
	survivorPosts := make(map[string]bool)
	for _, cm := range comments {
		commentIDs = append(commentIDs, cm.ID.Hex())
		for _, m := range cm.Media {
			mediaIDs = append(mediaIDs, m.MediaID)
		}
		if !deletedPosts[cm.PostID] {
			survivorPosts[cm.PostID] = true
		}
	}

	// 3. structural deletes
	if err := c.comments.DeleteCommentsByIDs(ctx, commentIDs); err != nil {
		return err
	}
	if err := c.posts.DeletePostsByIDs(ctx, postIDs); err != nil {
		return err
	}

	// 4. recompute comments_count on surviving posts; the member may have
	// left several comments on the same post, so aggregation, not decrement
	c.recountComments(ctx, survivorPosts)

	// 5. membership edge and counter, guarded so a re-run cannot decrement
	// twice
	if err := c.communities.RemoveMember(ctx, communityID, userID); err != nil && !errors.Is(err, repositories.ErrStaleDocument) {
		return err
	}

	c.scrubRefs(ctx, postIDs, mediaIDs)
	if err := c.users.RemoveCommunityRef(ctx, userID, community.Kind, communityID); err != nil && !apperrors.IsNotFound(err) {
		c.log.WithError(err).WithFields(logrus.Fields{
			"community_id": communityID,
			"user_id":      userID,
		}).Warn("failed to scrub membership mirror")
	}
	return nil
}

// DeleteCommunity removes a community and everything scoped to it
func (c *CleanupService) DeleteCommunity(ctx context.Context, community *models.Community) error {
	communityID := community.ID.Hex()

	posts, err := c.posts.FindByCommunity(ctx, community.Kind, communityID)
	if err != nil {
		return err
	}
	postIDs := make([]string, 0, len(posts))
	mediaIDs := make([]string, 0)
	for _, p := range posts {
		postIDs = append(postIDs, p.ID.Hex())
		for _, m := range p.Media {
			mediaIDs = append(mediaIDs, m.MediaID)
		}
	}

	comments, err := c.comments.FindByCommunity(ctx, community.Kind, communityID)
	if err != nil {
		return err
	}
	commentIDs := make([]string, 0, len(comments))
	for _, cm := range comments {
		commentIDs = append(commentIDs, cm.ID.Hex())
		for _, m := range cm.Media {
			mediaIDs = append(mediaIDs, m.MediaID)
		}
	}
	if community.ProfileMedia != nil {
		mediaIDs = append(mediaIDs, community.ProfileMedia.MediaID)
	}
	if community.CoverMedia != nil {
		mediaIDs = append(mediaIDs, community.CoverMedia.MediaID)
	}

	if err := c.comments.DeleteCommentsByIDs(ctx, commentIDs); err != nil {
		return err
	}
	if err := c.posts.DeletePostsByIDs(ctx, postIDs); err != nil {
		return err
	}
	if err := c.communities.DeleteCommunity(ctx, communityID); err != nil && !apperrors.IsNotFound(err) {
		return err
	}

	if err := c.users.RemoveCommunityRefFromAll(ctx, community.Kind, communityID); err != nil {
		c.log.WithError(err).WithField("community_id", communityID).Warn("failed to scrub community mirrors")
	}
	c.scrubRefs(ctx, postIDs, mediaIDs)
	return nil
}

// DeletePostCascade removes a single post, its comments and their media
func (c *CleanupService) DeletePostCascade(ctx context.Context, post *models.Post) error {
	postID := post.ID.Hex()

	comments, err := c.comments.FindByPostIDs(ctx, []string{postID})
	if err != nil {
		return err
	}
	mediaIDs := make([]string, 0, len(post.Media))
	for _, m := range post.Media {
		mediaIDs = append(mediaIDs, m.MediaID)
	}
	for _, cm := range comments {
		for _, m := range cm.Media {
			mediaIDs = append(mediaIDs, m.MediaID)
		}
	}

	if err := c.comments.DeleteCommentsByPostIDs(ctx, []string{postID}); err != nil {
		return err
	}
	if err := c.posts.DeletePost(ctx, postID); err != nil && !apperrors.IsNotFound(err) {
		return err
	}
	c.scrubRefs(ctx, []string{postID}, mediaIDs)
	return nil
}

// recountComments recomputes comments_count for each affected surviving post
func (c *CleanupService) recountComments(ctx context.Context, postIDs map[string]bool) {
	for postID := range postIDs {
		count, err := c.comments.CountByPostID(ctx, postID)
		if err != nil {
			c.log.WithError(err).WithField("post_id", postID).Warn("failed to recount comments")
			continue
		}
		if err := c.posts.SetCommentsCount(ctx, postID, int(count)); err != nil {
			c.log.WithError(err).WithField("post_id", postID).Warn("failed to write comments count")
		}
	}
}

// scrubRefs clears dangling post references and requests blob deletion; both
// are best-effort and reported, never fatal
func (c *CleanupService) scrubRefs(ctx context.Context, postIDs, mediaIDs []string) {
	if err := c.users.RemovePostRefs(ctx, postIDs); err != nil {
		c.log.WithError(err).Warn("failed to scrub post refs from user graphs")
	}
	if err := c.blobs.Delete(ctx, mediaIDs); err != nil {
		c.log.WithError(err).WithField("count", len(mediaIDs)).Warn("blob deletion incomplete, leaving for reconciliation")
	}
}
