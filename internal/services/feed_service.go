package services

import (
	"context"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
)

// Pagination carries the page cursor for feed queries. Skip compensates for
// client-side optimistic prepends: posts the client already inserted at the
// head shift the effective offset back so the next page does not repeat
// items.
type Pagination struct {
	Page  int64
	Limit int64
	Skip  int64
}

// Offset is the effective query offset after optimistic-prepend compensation
func (p Pagination) Offset() int64 {
	offset := (p.Page-1)*p.Limit - p.Skip
	if offset < 0 {
		return 0
	}
	return offset
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 50 {
		p.Limit = 10
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// FeedItem is a post annotated with viewer-relative flags
type FeedItem struct {
	models.Post
	IsShared     bool `json:"is_shared"`
	IsInBookmark bool `json:"is_in_bookmark"`
}

// FeedPage is one page of a feed with stable final-page semantics
type FeedPage struct {
	Items       []FeedItem `json:"items"`
	IsFinalPage bool       `json:"is_final_page"`
}

// FeedService composes paginated, privacy-filtered, multi-source feeds
type FeedService struct {
	posts       repositories.PostRepository
	users       repositories.UserGraphRepository
	communities repositories.CommunityRepository
	privacy     *PrivacyService
}

// NewFeedService creates a new FeedService
func NewFeedService(
	posts repositories.PostRepository,
	users repositories.UserGraphRepository,
	communities repositories.CommunityRepository,
	privacy *PrivacyService,
) *FeedService {
	return &FeedService{posts: posts, users: users, communities: communities, privacy: privacy}
}

// HomeFeed merges posts from the viewer's followed pages, joined groups and
// friends' non-private personal posts
func (s *FeedService) HomeFeed(ctx context.Context, viewerID string, p Pagination) (*FeedPage, error) {
	if viewerID == "" {
		return nil, apperrors.Forbidden("sign in to read the home feed")
	}
	p = p.normalized()

	viewer, err := s.users.GetUserGraph(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	pageIDs := append(append([]string{}, viewer.FollowedPages...), viewer.OwnedPages...)
	pageIDs = append(pageIDs, viewer.AdminPages...)
	groupIDs := append(append([]string{}, viewer.JoinedGroups...), viewer.OwnedGroups...)
	groupIDs = append(groupIDs, viewer.AdminGroups...)
	friendIDs := append([]string{}, viewer.Friends...)

	posts, total, err := s.posts.FindHomeFeed(ctx, pageIDs, groupIDs, friendIDs, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return s.assemble(posts, total, p, viewer), nil
}

// UserTimeline pages through a user's timeline projection, privacy-filtered
// relative to the viewer. The projection is the source of order and count;
// entries whose post has since been deleted are dropped from the page.
func (s *FeedService) UserTimeline(ctx context.Context, targetID, viewerID string, p Pagination) (*FeedPage, error) {
	p = p.normalized()

	target, err := s.users.GetUserGraph(ctx, targetID)
	if err != nil {
		return nil, err
	}
	privacies, err := s.privacy.TimelinePrivacies(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	allowed := make(map[models.Privacy]bool, len(privacies))
	for _, pr := range privacies {
		allowed[pr] = true
	}

	visible := make([]models.TimelineEntry, 0, len(target.AllPosts))
	for _, entry := range target.AllPosts {
		// community posts in the projection are always public; personal
		// entries carry their own scope
		if entry.Community != models.CommunityPersonal || allowed[entry.Privacy] {
			visible = append(visible, entry)
		}
	}
	total := int64(len(visible))

	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	pageEntries := visible[start:end]

	ids := make([]string, len(pageEntries))
	for i, entry := range pageEntries {
		ids[i] = entry.PostID
	}
	posts, err := s.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID.Hex()] = post
	}
	ordered := make([]models.Post, 0, len(pageEntries))
	for _, entry := range pageEntries {
		post, ok := byID[entry.PostID]
		if !ok {
			continue
		}
		// the post document is authoritative; the projection's privacy is a
		// snapshot that may lag behind an edit
		if post.Community == models.CommunityPersonal && !allowed[post.Privacy] {
			continue
		}
		ordered = append(ordered, post)
	}

	var viewer *models.UserGraph
	if viewerID != "" {
		if viewerID == targetID {
			viewer = target
		} else if viewer, err = s.users.GetUserGraph(ctx, viewerID); err != nil {
			return nil, err
		}
	}
	return s.assemble(ordered, total, p, viewer), nil
}

// CommunityFeed pages through a community's posts. A members_only group's
// feed is invisible to non-members.
func (s *FeedService) CommunityFeed(ctx context.Context, kind models.CommunityKind, communityID, viewerID string, p Pagination) (*FeedPage, error) {
	p = p.normalized()

	community, err := s.communities.GetCommunityByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community.Kind != kind {
		return nil, apperrors.NotFound("community not found")
	}
	if kind == models.CommunityGroup && community.Privacy == models.GroupMembersOnly {
		if community.RoleOf(viewerID) < models.RoleMember {
			return nil, apperrors.NotFound("group not found")
		}
	}

	posts, total, err := s.posts.FindCommunityPosts(ctx, kind, communityID, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}

	var viewer *models.UserGraph
	if viewerID != "" {
		if viewer, err = s.users.GetUserGraph(ctx, viewerID); err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
	}
	return s.assemble(posts, total, p, viewer), nil
}

// assemble annotates items relative to the viewer and computes the final-page
// flag from the total match count
func (s *FeedService) assemble(posts []models.Post, total int64, p Pagination, viewer *models.UserGraph) *FeedPage {
	items := make([]FeedItem, len(posts))
	for i, post := range posts {
		item := FeedItem{Post: post}
		if viewer != nil {
			id := post.ID.Hex()
			item.IsShared = viewer.HasShared(id)
			item.IsInBookmark = viewer.HasSaved(id)
		}
		items[i] = item
	}
	return &FeedPage{
		Items:       items,
		IsFinalPage: p.Page*p.Limit >= total,
	}
}
