package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/media"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// storyTTL is how long a story stays visible
const storyTTL = 24 * time.Hour

// ContentService creates and removes posts, comments and stories, and owns
// the share/bookmark mutations on the user graph. Counter updates always go
// through the repositories' atomic primitives; no caller touches a counter
// directly.
type ContentService struct {
	posts       repositories.PostRepository
	comments    repositories.CommentRepository
	stories     repositories.StoryRepository
	users       repositories.UserGraphRepository
	communities repositories.CommunityRepository
	privacy     *PrivacyService
	cleanup     *CleanupService
	outbox      *NotificationService
	blobs       media.BlobStore
	log         *logrus.Logger
}

// NewContentService creates a new ContentService
func NewContentService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	stories repositories.StoryRepository,
	users repositories.UserGraphRepository,
	communities repositories.CommunityRepository,
	privacy *PrivacyService,
	cleanup *CleanupService,
	outbox *NotificationService,
	blobs media.BlobStore,
	log *logrus.Logger,
) *ContentService {
	return &ContentService{
		posts:       posts,
		comments:    comments,
		stories:     stories,
		users:       users,
		communities: communities,
		privacy:     privacy,
		cleanup:     cleanup,
		outbox:      outbox,
		blobs:       blobs,
		log:         log,
	}
}

// CreatePost validates scope and privacy, stores the post and projects it
// onto the owner's timeline
func (s *ContentService) CreatePost(ctx context.Context, req *models.CreatePostRequest, viewerID string) (*models.Post, error) {
	if viewerID == "" {
		return nil, apperrors.Forbidden("sign in to post")
	}

	kind := models.CommunityPersonal
	if req.Community != "" {
		kind = models.CommunityKind(req.Community)
		if !kind.Valid() {
			return nil, apperrors.InvalidInput("unknown community kind")
		}
	}
	privacy := models.PrivacyPublic
	if req.Privacy != "" {
		privacy = models.Privacy(req.Privacy)
		if !privacy.Valid() {
			return nil, apperrors.InvalidInput("unknown privacy scope")
		}
	}

	post := &models.Post{
		UserID:    viewerID,
		Content:   req.Content,
		Community: kind,
		Privacy:   privacy,
		Media:     req.Media,
	}

	if kind == models.CommunityPersonal {
		if req.CommunityID != "" {
			return nil, apperrors.InvalidInput("personal posts do not take a community id")
		}
	} else {
		if req.CommunityID == "" {
			return nil, apperrors.InvalidInput("community id is required for page and group posts")
		}
		if privacy != models.PrivacyPublic {
			return nil, apperrors.InvalidInput("community posts are always public")
		}
		community, err := s.communities.GetCommunityByID(ctx, req.CommunityID)
		if err != nil {
			return nil, err
		}
		if community.Kind != kind {
			return nil, apperrors.NotFound("community not found")
		}
		role := community.RoleOf(viewerID)
		if kind == models.CommunityPage && role < models.RoleAdmin {
			return nil, apperrors.Forbidden("only the page owner or admins can post to a page")
		}
		if kind == models.CommunityGroup && role < models.RoleMember {
			return nil, apperrors.Forbidden("join the group to post in it")
		}
		post.CommunityID = req.CommunityID
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.projectToTimeline(ctx, viewerID, post)
	return post, nil
}

// GetPost retrieves a post if the viewer may see it
func (s *ContentService) GetPost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.privacy.RequireViewPost(ctx, viewerID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost edits a post; owner only
func (s *ContentService) UpdatePost(ctx context.Context, postID string, req *models.UpdatePostRequest, viewerID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !s.privacy.CanEditPost(viewerID, post) {
		return nil, apperrors.Forbidden("only the author can edit this post")
	}
	privacy := models.Privacy(req.Privacy)
	if req.Privacy != "" && post.Community != models.CommunityPersonal {
		return nil, apperrors.InvalidInput("community posts are always public")
	}
	if err := s.posts.UpdatePost(ctx, postID, req.Content, privacy); err != nil {
		return nil, err
	}
	if req.Privacy != "" {
		// keep the timeline projection's privacy snapshot in step with the
		// post document; the feed re-checks the document, so a miss here is
		// not a leak
		if err := s.users.UpdateTimelinePrivacy(ctx, post.UserID, postID, privacy); err != nil && !apperrors.IsNotFound(err) {
			s.log.WithError(err).WithField("post_id", postID).Warn("failed to update timeline privacy snapshot")
		}
	}
	return s.posts.GetPostByID(ctx, postID)
}

// DeletePost removes a post with its comments and media; allowed for the
// author, the hosting community's owner, or a group admin
func (s *ContentService) DeletePost(ctx context.Context, postID, viewerID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.privacy.RequireViewPost(ctx, viewerID, post); err != nil {
		return err
	}
	ok, err := s.privacy.CanDeletePost(ctx, viewerID, post)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Forbidden("not allowed to delete this post")
	}
	return s.cleanup.DeletePostCascade(ctx, post)
}

// DeleteMediaFromPost removes one media reference from a post; owner only
func (s *ContentService) DeleteMediaFromPost(ctx context.Context, postID, mediaID, viewerID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if !s.privacy.CanEditPost(viewerID, post) {
		return apperrors.Forbidden("only the author can edit this post")
	}
	if err := s.posts.RemoveMediaFromPost(ctx, postID, mediaID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, []string{mediaID}); err != nil {
		s.log.WithError(err).WithField("media_id", mediaID).Warn("blob deletion incomplete, leaving for reconciliation")
	}
	return nil
}

// CreateComment adds a comment under a visible post and bumps the post's
// comment counter atomically
func (s *ContentService) CreateComment(ctx context.Context, postID string, req *models.CreateCommentRequest, viewerID string) (*models.Comment, error) {
	if viewerID == "" {
		return nil, apperrors.Forbidden("sign in to comment")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.privacy.RequireViewPost(ctx, viewerID, post); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:      postID,
		UserID:      viewerID,
		Content:     req.Content,
		Community:   post.Community,
		CommunityID: post.CommunityID,
		Media:       req.Media,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.posts.IncrementCommentsCount(ctx, postID); err != nil {
		s.log.WithError(err).WithField("post_id", postID).Warn("failed to bump comments count")
	}
	if post.UserID != viewerID {
		s.outbox.Push(&models.Notification{
			Type:        models.NotificationComment,
			ActorID:     viewerID,
			RecipientID: post.UserID,
			TargetID:    postID,
			TargetType:  "post",
			Message:     "commented on your post",
		})
	}
	return comment, nil
}

// ListComments pages through a post's comments if the viewer may see the post
func (s *ContentService) ListComments(ctx context.Context, postID, viewerID string, p Pagination) ([]models.Comment, bool, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	if err := s.privacy.RequireViewPost(ctx, viewerID, post); err != nil {
		return nil, false, err
	}
	p = p.normalized()
	comments, total, err := s.comments.FindByPostID(ctx, postID, p.Offset(), p.Limit)
	if err != nil {
		return nil, false, err
	}
	return comments, p.Page*p.Limit >= total, nil
}

// UpdateComment edits a comment; owner only
func (s *ContentService) UpdateComment(ctx context.Context, commentID string, req *models.UpdateCommentRequest, viewerID string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.privacy.VisibleParentPost(ctx, viewerID, comment); err != nil {
		return nil, err
	}
	if comment.UserID != viewerID {
		return nil, apperrors.Forbidden("only the author can edit this comment")
	}
	if err := s.comments.UpdateComment(ctx, commentID, req.Content); err != nil {
		return nil, err
	}
	return s.comments.GetCommentByID(ctx, commentID)
}

// DeleteComment removes a comment and recomputes the post's counter
func (s *ContentService) DeleteComment(ctx context.Context, commentID, viewerID string) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if _, err := s.privacy.VisibleParentPost(ctx, viewerID, comment); err != nil {
		return err
	}
	ok, err := s.privacy.CanDeleteComment(ctx, viewerID, comment)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Forbidden("not allowed to delete this comment")
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	count, err := s.comments.CountByPostID(ctx, comment.PostID)
	if err == nil {
		err = s.posts.SetCommentsCount(ctx, comment.PostID, int(count))
	}
	if err != nil {
		s.log.WithError(err).WithField("post_id", comment.PostID).Warn("failed to recount comments")
	}

	mediaIDs := make([]string, 0, len(comment.Media))
	for _, m := range comment.Media {
		mediaIDs = append(mediaIDs, m.MediaID)
	}
	if err := s.blobs.Delete(ctx, mediaIDs); err != nil {
		s.log.WithError(err).Warn("blob deletion incomplete, leaving for reconciliation")
	}
	return nil
}

// DeleteMediaFromComment removes one media reference from a comment; owner only
func (s *ContentService) DeleteMediaFromComment(ctx context.Context, commentID, mediaID, viewerID string) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if _, err := s.privacy.VisibleParentPost(ctx, viewerID, comment); err != nil {
		return err
	}
	if comment.UserID != viewerID {
		return apperrors.Forbidden("only the author can edit this comment")
	}
	if err := s.comments.RemoveMediaFromComment(ctx, commentID, mediaID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, []string{mediaID}); err != nil {
		s.log.WithError(err).WithField("media_id", mediaID).Warn("blob deletion incomplete, leaving for reconciliation")
	}
	return nil
}

// SharePost records a share on the post and in the sharer's graph, and
// projects the shared post onto the sharer's timeline
func (s *ContentService) SharePost(ctx context.Context, postID, viewerID string) error {
	if viewerID == "" {
		return apperrors.Forbidden("sign in to share")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.privacy.RequireViewPost(ctx, viewerID, post); err != nil {
		return err
	}

	if err := s.posts.AddShare(ctx, postID, viewerID); err != nil {
		if errors.Is(err, repositories.ErrStaleDocument) {
			return apperrors.Conflict("post already shared")
		}
		return err
	}
	if err := s.users.AddSharedPost(ctx, viewerID, postID); err != nil && !apperrors.IsNotFound(err) {
		s.log.WithError(err).WithField("post_id", postID).Warn("failed to mirror share")
	}
	s.projectToTimeline(ctx, viewerID, post)
	if post.UserID != viewerID {
		s.outbox.Push(&models.Notification{
			Type:        models.NotificationShare,
			ActorID:     viewerID,
			RecipientID: post.UserID,
			TargetID:    postID,
			TargetType:  "post",
			Message:     "shared your post",
		})
	}
	return nil
}

// UnsharePost reverses SharePost
func (s *ContentService) UnsharePost(ctx context.Context, postID, viewerID string) error {
	if err := s.posts.RemoveShare(ctx, postID, viewerID); err != nil {
		if errors.Is(err, repositories.ErrStaleDocument) {
			return apperrors.Conflict("post is not shared")
		}
		return err
	}
	if err := s.users.RemoveSharedPost(ctx, viewerID, postID); err != nil && !apperrors.IsNotFound(err) {
		s.log.WithError(err).WithField("post_id", postID).Warn("failed to scrub share mirror")
	}
	if err := s.users.RemoveTimelineEntry(ctx, viewerID, postID); err != nil && !apperrors.IsNotFound(err) {
		s.log.WithError(err).WithField("post_id", postID).Warn("failed to scrub timeline entry")
	}
	return nil
}

// SavePost bookmarks a visible post for the viewer
func (s *ContentService) SavePost(ctx context.Context, postID, viewerID string) error {
	if viewerID == "" {
		return apperrors.Forbidden("sign in to save posts")
	}
	if _, err := s.GetPost(ctx, postID, viewerID); err != nil {
		return err
	}
	if err := s.users.AddSavedPost(ctx, viewerID, postID); err != nil {
		if errors.Is(err, repositories.ErrStaleDocument) {
			return apperrors.Conflict("post already saved")
		}
		return err
	}
	return nil
}

// UnsavePost removes a bookmark
func (s *ContentService) UnsavePost(ctx context.Context, postID, viewerID string) error {
	if err := s.users.RemoveSavedPost(ctx, viewerID, postID); err != nil {
		if errors.Is(err, repositories.ErrStaleDocument) {
			return apperrors.Conflict("post is not saved")
		}
		return err
	}
	return nil
}

// ListSavedPosts returns the viewer's bookmarks that are still visible
func (s *ContentService) ListSavedPosts(ctx context.Context, viewerID string) ([]models.Post, error) {
	viewer, err := s.users.GetUserGraph(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.GetPostsByIDs(ctx, viewer.SavedPosts)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Post, 0, len(posts))
	for i := range posts {
		ok, err := s.privacy.CanViewPost(ctx, viewerID, &posts[i])
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, posts[i])
		}
	}
	return visible, nil
}

// CreateStory stores a story that expires after 24 hours
func (s *ContentService) CreateStory(ctx context.Context, req *models.CreateStoryRequest, viewerID string) (*models.Story, error) {
	if viewerID == "" {
		return nil, apperrors.Forbidden("sign in to post a story")
	}
	story := &models.Story{
		UserID:    viewerID,
		Media:     req.Media,
		Type:      req.Type,
		Duration:  req.Duration,
		ExpiresAt: time.Now().Add(storyTTL),
	}
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// ListStories returns the viewer's and their friends' unexpired stories
func (s *ContentService) ListStories(ctx context.Context, viewerID string) ([]models.Story, error) {
	viewer, err := s.users.GetUserGraph(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authors := append([]string{viewerID}, viewer.Friends...)
	return s.stories.FindVisible(ctx, authors, time.Now())
}

// DeleteStory removes a story; owner only
func (s *ContentService) DeleteStory(ctx context.Context, storyID, viewerID string) error {
	story, err := s.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != viewerID {
		return apperrors.Forbidden("only the author can delete this story")
	}
	if err := s.stories.DeleteStory(ctx, storyID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, []string{story.Media.MediaID}); err != nil {
		s.log.WithError(err).Warn("blob deletion incomplete, leaving for reconciliation")
	}
	return nil
}

// projectToTimeline appends the post to the user's allPosts projection
func (s *ContentService) projectToTimeline(ctx context.Context, userID string, post *models.Post) {
	entry := models.TimelineEntry{
		PostID:      post.ID.Hex(),
		ShareDate:   time.Now(),
		Privacy:     post.Privacy,
		Community:   post.Community,
		CommunityID: post.CommunityID,
	}
	if err := s.users.AppendTimelineEntry(ctx, userID, entry); err != nil && !apperrors.IsNotFound(err) {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"post_id": entry.PostID,
		}).Warn("failed to project post onto timeline")
	}
}
