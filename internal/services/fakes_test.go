package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes with the same guarded-update semantics as the
// Mongo implementations: conditional mutations report ErrStaleDocument when
// the asserted prior state no longer holds.

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// --- posts ---

type fakePostRepo struct {
	byID  map[string]*models.Post
	order []string // insertion order, oldest first
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{byID: map[string]*models.Post{}}
}

func (f *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Reactions == nil {
		post.Reactions = models.NewReactionMap()
	}
	if post.ShareData.Users == nil {
		post.ShareData.Users = []string{}
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	id := post.ID.Hex()
	f.byID[id] = post
	f.order = append(f.order, id)
	return nil
}

func (f *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	cp := *post
	return &cp, nil
}

func (f *fakePostRepo) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	out := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if post, ok := f.byID[id]; ok {
			out = append(out, *post)
		}
	}
	return out, nil
}

func (f *fakePostRepo) UpdatePost(ctx context.Context, id, content string, privacy models.Privacy) error {
	post, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	if content != "" {
		post.Content = content
	}
	if privacy != "" {
		post.Privacy = privacy
	}
	post.UpdatedAt = time.Now()
	return nil
}

func (f *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperrors.NotFound("post not found")
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePostRepo) DeletePostsByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.byID, id)
	}
	return nil
}

func (f *fakePostRepo) SwapReaction(ctx context.Context, postID, userID string, prev, next models.ReactionKind) error {
	post, ok := f.byID[postID]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	if err := swapReactionInMap(post.Reactions, userID, prev, next); err != nil {
		return err
	}
	return nil
}

func (f *fakePostRepo) AddShare(ctx context.Context, postID, userID string) error {
	post, ok := f.byID[postID]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	if contains(post.ShareData.Users, userID) {
		return repositories.ErrStaleDocument
	}
	post.ShareData.Users = append(post.ShareData.Users, userID)
	post.ShareData.Count++
	return nil
}

func (f *fakePostRepo) RemoveShare(ctx context.Context, postID, userID string) error {
	post, ok := f.byID[postID]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	if !contains(post.ShareData.Users, userID) {
		return repositories.ErrStaleDocument
	}
	post.ShareData.Users = remove(post.ShareData.Users, userID)
	post.ShareData.Count--
	return nil
}

func (f *fakePostRepo) IncrementCommentsCount(ctx context.Context, postID string) error {
	post, ok := f.byID[postID]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	post.CommentsCount++
	return nil
}

func (f *fakePostRepo) SetCommentsCount(ctx context.Context, postID string, count int) error {
	post, ok := f.byID[postID]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	post.CommentsCount = count
	return nil
}

func (f *fakePostRepo) RemoveMediaFromPost(ctx context.Context, postID, mediaID string) error {
	post, ok := f.byID[postID]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	kept := post.Media[:0]
	for _, m := range post.Media {
		if m.MediaID != mediaID {
			kept = append(kept, m)
		}
	}
	post.Media = kept
	return nil
}

func (f *fakePostRepo) FindByOwnerInCommunity(ctx context.Context, kind models.CommunityKind, communityID, ownerID string) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool {
		return p.Community == kind && p.CommunityID == communityID && p.UserID == ownerID
	}), nil
}

func (f *fakePostRepo) FindByCommunity(ctx context.Context, kind models.CommunityKind, communityID string) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool {
		return p.Community == kind && p.CommunityID == communityID
	}), nil
}

func (f *fakePostRepo) FindCommunityPosts(ctx context.Context, kind models.CommunityKind, communityID string, offset, limit int64) ([]models.Post, int64, error) {
	matched := f.filter(func(p *models.Post) bool {
		return p.Community == kind && p.CommunityID == communityID
	})
	return pagePosts(matched, offset, limit)
}

func (f *fakePostRepo) FindHomeFeed(ctx context.Context, pageIDs, groupIDs, friendIDs []string, offset, limit int64) ([]models.Post, int64, error) {
	matched := f.filter(func(p *models.Post) bool {
		switch p.Community {
		case models.CommunityPage:
			return contains(pageIDs, p.CommunityID)
		case models.CommunityGroup:
			return contains(groupIDs, p.CommunityID)
		case models.CommunityPersonal:
			if !contains(friendIDs, p.UserID) {
				return false
			}
			return p.Privacy == models.PrivacyPublic || p.Privacy == models.PrivacyFriendsOnly
		}
		return false
	})
	return pagePosts(matched, offset, limit)
}

// filter returns matches newest first, the order the Mongo queries sort in
func (f *fakePostRepo) filter(keep func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for i := len(f.order) - 1; i >= 0; i-- {
		if post, ok := f.byID[f.order[i]]; ok && keep(post) {
			out = append(out, *post)
		}
	}
	return out
}

func pagePosts(matched []models.Post, offset, limit int64) ([]models.Post, int64, error) {
	total := int64(len(matched))
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func swapReactionInMap(reactions models.ReactionMap, userID string, prev, next models.ReactionKind) error {
	if prev == "" {
		if kind, ok := reactions.KindOf(userID); ok && kind != "" {
			return repositories.ErrStaleDocument
		}
	} else if !reactions.Has(prev, userID) {
		return repositories.ErrStaleDocument
	}
	if prev != "" {
		g := reactions[prev]
		g.Users = remove(g.Users, userID)
		g.Count--
		reactions[prev] = g
	}
	if next != "" {
		g := reactions[next]
		g.Users = append(g.Users, userID)
		g.Count++
		reactions[next] = g
	}
	return nil
}

// --- comments ---

type fakeCommentRepo struct {
	byID  map[string]*models.Comment
	order []string
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byID: map[string]*models.Comment{}}
}

func (f *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Reactions == nil {
		comment.Reactions = models.NewReactionMap()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	id := comment.ID.Hex()
	f.byID[id] = comment
	f.order = append(f.order, id)
	return nil
}

func (f *fakeCommentRepo) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("comment not found")
	}
	cp := *comment
	return &cp, nil
}

func (f *fakeCommentRepo) UpdateComment(ctx context.Context, id, content string) error {
	comment, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("comment not found")
	}
	comment.Content = content
	comment.UpdatedAt = time.Now()
	return nil
}

func (f *fakeCommentRepo) DeleteComment(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperrors.NotFound("comment not found")
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCommentRepo) DeleteCommentsByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.byID, id)
	}
	return nil
}

func (f *fakeCommentRepo) DeleteCommentsByPostIDs(ctx context.Context, postIDs []string) error {
	for id, c := range f.byID {
		if contains(postIDs, c.PostID) {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeCommentRepo) SwapReaction(ctx context.Context, commentID, userID string, prev, next models.ReactionKind) error {
	comment, ok := f.byID[commentID]
	if !ok {
		return apperrors.NotFound("comment not found")
	}
	return swapReactionInMap(comment.Reactions, userID, prev, next)
}

func (f *fakeCommentRepo) FindByPostID(ctx context.Context, postID string, offset, limit int64) ([]models.Comment, int64, error) {
	matched := f.filter(func(c *models.Comment) bool { return c.PostID == postID })
	total := int64(len(matched))
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeCommentRepo) FindByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	return f.filter(func(c *models.Comment) bool { return contains(postIDs, c.PostID) }), nil
}

func (f *fakeCommentRepo) CountByPostID(ctx context.Context, postID string) (int64, error) {
	var n int64
	for _, c := range f.byID {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCommentRepo) FindForCleanup(ctx context.Context, postIDs []string, ownerID string, kind models.CommunityKind, communityID string) ([]models.Comment, error) {
	return f.filter(func(c *models.Comment) bool {
		if contains(postIDs, c.PostID) {
			return true
		}
		return c.UserID == ownerID && c.Community == kind && c.CommunityID == communityID
	}), nil
}

func (f *fakeCommentRepo) FindByCommunity(ctx context.Context, kind models.CommunityKind, communityID string) ([]models.Comment, error) {
	return f.filter(func(c *models.Comment) bool {
		return c.Community == kind && c.CommunityID == communityID
	}), nil
}

func (f *fakeCommentRepo) RemoveMediaFromComment(ctx context.Context, commentID, mediaID string) error {
	comment, ok := f.byID[commentID]
	if !ok {
		return apperrors.NotFound("comment not found")
	}
	kept := comment.Media[:0]
	for _, m := range comment.Media {
		if m.MediaID != mediaID {
			kept = append(kept, m)
		}
	}
	comment.Media = kept
	return nil
}

func (f *fakeCommentRepo) filter(keep func(*models.Comment) bool) []models.Comment {
	out := []models.Comment{}
	for i := len(f.order) - 1; i >= 0; i-- {
		if c, ok := f.byID[f.order[i]]; ok && keep(c) {
			out = append(out, *c)
		}
	}
	return out
}

// --- communities ---

type fakeCommunityRepo struct {
	byID map[string]*models.Community
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{byID: map[string]*models.Community{}}
}

func (f *fakeCommunityRepo) CreateCommunity(ctx context.Context, community *models.Community) error {
	if community.ID.IsZero() {
		community.ID = primitive.NewObjectID()
	}
	if community.Admins == nil {
		community.Admins = []string{}
	}
	if community.Members == nil {
		community.Members = []string{}
	}
	now := time.Now()
	community.CreatedAt = now
	community.UpdatedAt = now
	f.byID[community.ID.Hex()] = community
	return nil
}

func (f *fakeCommunityRepo) GetCommunityByID(ctx context.Context, id string) (*models.Community, error) {
	community, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("community not found")
	}
	cp := *community
	return &cp, nil
}

func (f *fakeCommunityRepo) UpdateCommunity(ctx context.Context, id string, set *models.UpdateCommunityRequest) error {
	community, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("community not found")
	}
	if set.Name != "" {
		community.Name = set.Name
	}
	if set.Description != "" {
		community.Description = set.Description
	}
	if set.ProfileMedia != nil {
		community.ProfileMedia = set.ProfileMedia
	}
	if set.CoverMedia != nil {
		community.CoverMedia = set.CoverMedia
	}
	return nil
}

func (f *fakeCommunityRepo) DeleteCommunity(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperrors.NotFound("community not found")
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCommunityRepo) AddMember(ctx context.Context, id, userID string) error {
	community, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("community not found")
	}
	if community.RoleOf(userID) != models.RoleNone {
		return repositories.ErrStaleDocument
	}
	community.Members = append(community.Members, userID)
	community.MembersCount++
	kept := community.JoinRequests[:0]
	for _, r := range community.JoinRequests {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	community.JoinRequests = kept
	return nil
}

func (f *fakeCommunityRepo) RemoveMember(ctx context.Context, id, userID string) error {
	community, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("community not found")
	}
	if !contains(community.Members, userID) && !contains(community.Admins, userID) {
		return repositories.ErrStaleDocument
	}
	community.Members = remove(community.Members, userID)
	community.Admins = remove(community.Admins, userID)
	community.MembersCount--
	return nil
}

func (f *fakeCommunityRepo) AddAdmin(ctx context.Context, id, userID string) error {
	community, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("community not found")
	}
	if !contains(community.Members, userID) || contains(community.Admins, userID) {
		return repositories.ErrStaleDocument
	}
	community.Members = remove(community.Members, userID)
	community.Admins = append(community.Admins, userID)
	return nil
}

func (f *fakeCommunityRepo) RemoveAdmin(ctx context.Context, id, userID string) error {
	community, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("community not found")
	}
	if !contains(community.Admins, userID) {
		return repositories.ErrStaleDocument
	}
	community.Admins = remove(community.Admins, userID)
	community.Members = append(community.Members, userID)
	return nil
}

func (f *fakeCommunityRepo) AddJoinRequest(ctx context.Context, id string, request models.JoinRequest) error {
	community, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("community not found")
	}
	if community.RoleOf(request.UserID) != models.RoleNone {
		return repositories.ErrStaleDocument
	}
	if _, pending := community.PendingRequest(request.UserID); pending {
		return repositories.ErrStaleDocument
	}
	community.JoinRequests = append(community.JoinRequests, request)
	return nil
}

func (f *fakeCommunityRepo) RemoveJoinRequest(ctx context.Context, id, requestID string) error {
	community, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("community not found")
	}
	if _, ok := community.RequestByID(requestID); !ok {
		return repositories.ErrStaleDocument
	}
	kept := community.JoinRequests[:0]
	for _, r := range community.JoinRequests {
		if r.RequestID != requestID {
			kept = append(kept, r)
		}
	}
	community.JoinRequests = kept
	return nil
}

// --- user graphs ---

type fakeUserGraphRepo struct {
	byID map[string]*models.UserGraph
}

func newFakeUserGraphRepo() *fakeUserGraphRepo {
	return &fakeUserGraphRepo{byID: map[string]*models.UserGraph{}}
}

func (f *fakeUserGraphRepo) CreateUserGraph(ctx context.Context, userID string) error {
	if _, ok := f.byID[userID]; ok {
		return apperrors.Conflict("user graph already exists")
	}
	f.byID[userID] = &models.UserGraph{
		ID:            userID,
		Friends:       []string{},
		JoinedGroups:  []string{},
		OwnedGroups:   []string{},
		AdminGroups:   []string{},
		FollowedPages: []string{},
		OwnedPages:    []string{},
		AdminPages:    []string{},
		SavedPosts:    []string{},
		SharedPosts:   []string{},
		AllPosts:      []models.TimelineEntry{},
		CreatedAt:     time.Now(),
	}
	return nil
}

func (f *fakeUserGraphRepo) GetUserGraph(ctx context.Context, userID string) (*models.UserGraph, error) {
	graph, ok := f.byID[userID]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	cp := *graph
	return &cp, nil
}

func (f *fakeUserGraphRepo) get(userID string) (*models.UserGraph, error) {
	graph, ok := f.byID[userID]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return graph, nil
}

func (f *fakeUserGraphRepo) AddFriendEdge(ctx context.Context, userA, userB string) error {
	a, err := f.get(userA)
	if err != nil {
		return err
	}
	b, err := f.get(userB)
	if err != nil {
		return err
	}
	if !contains(a.Friends, userB) {
		a.Friends = append(a.Friends, userB)
	}
	if !contains(b.Friends, userA) {
		b.Friends = append(b.Friends, userA)
	}
	return nil
}

func (f *fakeUserGraphRepo) RemoveFriendEdge(ctx context.Context, userA, userB string) error {
	a, err := f.get(userA)
	if err != nil {
		return err
	}
	b, err := f.get(userB)
	if err != nil {
		return err
	}
	a.Friends = remove(a.Friends, userB)
	b.Friends = remove(b.Friends, userA)
	return nil
}

func (f *fakeUserGraphRepo) communityList(graph *models.UserGraph, kind models.CommunityKind, role models.Role) *[]string {
	if kind == models.CommunityPage {
		switch role {
		case models.RoleOwner:
			return &graph.OwnedPages
		case models.RoleAdmin:
			return &graph.AdminPages
		default:
			return &graph.FollowedPages
		}
	}
	switch role {
	case models.RoleOwner:
		return &graph.OwnedGroups
	case models.RoleAdmin:
		return &graph.AdminGroups
	default:
		return &graph.JoinedGroups
	}
}

func (f *fakeUserGraphRepo) AddCommunityRef(ctx context.Context, userID string, kind models.CommunityKind, role models.Role, communityID string) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	list := f.communityList(graph, kind, role)
	if !contains(*list, communityID) {
		*list = append(*list, communityID)
	}
	return nil
}

func (f *fakeUserGraphRepo) RemoveCommunityRef(ctx context.Context, userID string, kind models.CommunityKind, communityID string) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	for _, role := range []models.Role{models.RoleMember, models.RoleAdmin, models.RoleOwner} {
		list := f.communityList(graph, kind, role)
		*list = remove(*list, communityID)
	}
	return nil
}

func (f *fakeUserGraphRepo) RemoveCommunityRefFromAll(ctx context.Context, kind models.CommunityKind, communityID string) error {
	for userID := range f.byID {
		if err := f.RemoveCommunityRef(ctx, userID, kind, communityID); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeUserGraphRepo) AddSavedPost(ctx context.Context, userID, postID string) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	if contains(graph.SavedPosts, postID) {
		return repositories.ErrStaleDocument
	}
	graph.SavedPosts = append(graph.SavedPosts, postID)
	return nil
}

func (f *fakeUserGraphRepo) RemoveSavedPost(ctx context.Context, userID, postID string) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	if !contains(graph.SavedPosts, postID) {
		return repositories.ErrStaleDocument
	}
	graph.SavedPosts = remove(graph.SavedPosts, postID)
	return nil
}

func (f *fakeUserGraphRepo) AddSharedPost(ctx context.Context, userID, postID string) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	if contains(graph.SharedPosts, postID) {
		return repositories.ErrStaleDocument
	}
	graph.SharedPosts = append(graph.SharedPosts, postID)
	return nil
}

func (f *fakeUserGraphRepo) RemoveSharedPost(ctx context.Context, userID, postID string) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	if !contains(graph.SharedPosts, postID) {
		return repositories.ErrStaleDocument
	}
	graph.SharedPosts = remove(graph.SharedPosts, postID)
	return nil
}

func (f *fakeUserGraphRepo) AppendTimelineEntry(ctx context.Context, userID string, entry models.TimelineEntry) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	graph.AllPosts = append([]models.TimelineEntry{entry}, graph.AllPosts...)
	return nil
}

func (f *fakeUserGraphRepo) UpdateTimelinePrivacy(ctx context.Context, userID, postID string, privacy models.Privacy) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	for i := range graph.AllPosts {
		if graph.AllPosts[i].PostID == postID {
			graph.AllPosts[i].Privacy = privacy
			return nil
		}
	}
	return apperrors.NotFound("timeline entry not found")
}

func (f *fakeUserGraphRepo) RemoveTimelineEntry(ctx context.Context, userID, postID string) error {
	graph, err := f.get(userID)
	if err != nil {
		return err
	}
	kept := graph.AllPosts[:0]
	for _, e := range graph.AllPosts {
		if e.PostID != postID {
			kept = append(kept, e)
		}
	}
	graph.AllPosts = kept
	return nil
}

func (f *fakeUserGraphRepo) RemovePostRefs(ctx context.Context, postIDs []string) error {
	for _, graph := range f.byID {
		for _, postID := range postIDs {
			graph.SavedPosts = remove(graph.SavedPosts, postID)
			graph.SharedPosts = remove(graph.SharedPosts, postID)
			kept := graph.AllPosts[:0]
			for _, e := range graph.AllPosts {
				if e.PostID != postID {
					kept = append(kept, e)
				}
			}
			graph.AllPosts = kept
		}
	}
	return nil
}

// --- stories ---

type fakeStoryRepo struct {
	byID map[string]*models.Story
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{byID: map[string]*models.Story{}}
}

func (f *fakeStoryRepo) CreateStory(ctx context.Context, story *models.Story) error {
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	story.CreatedAt = time.Now()
	f.byID[story.ID.Hex()] = story
	return nil
}

func (f *fakeStoryRepo) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	story, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("story not found")
	}
	cp := *story
	return &cp, nil
}

func (f *fakeStoryRepo) DeleteStory(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperrors.NotFound("story not found")
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeStoryRepo) FindVisible(ctx context.Context, userIDs []string, now time.Time) ([]models.Story, error) {
	out := []models.Story{}
	for _, s := range f.byID {
		if contains(userIDs, s.UserID) && s.ExpiresAt.After(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- notification outbox ---

type fakeNotificationRepo struct {
	created []models.Notification
	nextID  uint
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipientID(recipientID string, page, limit int) ([]models.Notification, int64, error) {
	matched := []models.Notification{}
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			matched = append(matched, n)
		}
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(recipientID string) (int64, error) {
	var n int64
	for _, note := range f.created {
		if note.RecipientID == recipientID && !note.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) MarkAsRead(recipientID string, notificationID uint) error {
	for i := range f.created {
		if f.created[i].ID == notificationID && f.created[i].RecipientID == recipientID {
			f.created[i].IsRead = true
			return nil
		}
	}
	return apperrors.NotFound("notification not found")
}

func (f *fakeNotificationRepo) MarkAllAsRead(recipientID string) error {
	for i := range f.created {
		if f.created[i].RecipientID == recipientID {
			f.created[i].IsRead = true
		}
	}
	return nil
}

// forRecipient returns the notifications pushed to one user
func (f *fakeNotificationRepo) forRecipient(recipientID string) []models.Notification {
	out := []models.Notification{}
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

// --- blob store ---

type fakeBlobStore struct {
	deleted []string
}

func (f *fakeBlobStore) Delete(ctx context.Context, mediaIDs []string) error {
	f.deleted = append(f.deleted, mediaIDs...)
	return nil
}

type fakeFriendshipRepo struct {
	requests map[uint]*models.FriendRequest
	nextID   uint
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{requests: map[uint]*models.FriendRequest{}, nextID: 1}
}

func (f *fakeFriendshipRepo) SendFriendRequest(req *models.FriendRequest) error {
	if existing, err := f.GetFriendRequestBetween(req.SenderID, req.ReceiverID); err == nil {
		switch existing.Status {
		case models.FriendRequestPending:
			return apperrors.Conflict("a pending friend request already exists between these users")
		case models.FriendRequestAccepted:
			return apperrors.Conflict("users are already friends")
		}
	}
	req.ID = f.nextID
	f.nextID++
	req.Status = models.FriendRequestPending
	stored := *req
	f.requests[req.ID] = &stored
	return nil
}

func (f *fakeFriendshipRepo) GetFriendRequestByID(id uint) (*models.FriendRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("friend request not found")
	}
	out := *req
	return &out, nil
}

func (f *fakeFriendshipRepo) GetFriendRequestBetween(userA, userB string) (*models.FriendRequest, error) {
	for _, req := range f.requests {
		if (req.SenderID == userA && req.ReceiverID == userB) || (req.SenderID == userB && req.ReceiverID == userA) {
			out := *req
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("friend request not found")
}

func (f *fakeFriendshipRepo) GetPendingFriendRequests(userID string) ([]models.FriendRequest, error) {
	out := []models.FriendRequest{}
	for _, req := range f.requests {
		if req.ReceiverID == userID && req.Status == models.FriendRequestPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeFriendshipRepo) UpdateFriendRequestStatus(id uint, status string) error {
	req, ok := f.requests[id]
	if !ok {
		return apperrors.NotFound("friend request not found")
	}
	req.Status = status
	return nil
}

func (f *fakeFriendshipRepo) DeleteFriendRequest(id uint) error {
	delete(f.requests, id)
	return nil
}

type fakeAccountRepo struct {
	byPublicID map[string]*models.Account
	nextID     uint
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byPublicID: map[string]*models.Account{}, nextID: 1}
}

func (f *fakeAccountRepo) CreateAccount(account *models.Account) error {
	if _, ok := f.byPublicID[account.PublicID]; ok {
		return apperrors.Conflict("account already exists")
	}
	account.ID = f.nextID
	f.nextID++
	stored := *account
	f.byPublicID[account.PublicID] = &stored
	return nil
}

func (f *fakeAccountRepo) GetAccountByID(id uint) (*models.Account, error) {
	for _, a := range f.byPublicID {
		if a.ID == id {
			out := *a
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("account not found")
}

func (f *fakeAccountRepo) GetAccountByPublicID(publicID string) (*models.Account, error) {
	a, ok := f.byPublicID[publicID]
	if !ok {
		return nil, apperrors.NotFound("account not found")
	}
	out := *a
	return &out, nil
}

func (f *fakeAccountRepo) GetAccountByEmail(email string) (*models.Account, error) {
	for _, a := range f.byPublicID {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("account not found")
}

func (f *fakeAccountRepo) GetAccountByFirebaseUID(firebaseUID string) (*models.Account, error) {
	for _, a := range f.byPublicID {
		if a.FirebaseUID == firebaseUID {
			out := *a
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("account not found")
}

func (f *fakeAccountRepo) GetAccountsByPublicIDs(publicIDs []string) ([]models.Account, error) {
	out := []models.Account{}
	for _, id := range publicIDs {
		if a, ok := f.byPublicID[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateAccount(account *models.Account) error {
	if _, ok := f.byPublicID[account.PublicID]; !ok {
		return apperrors.NotFound("account not found")
	}
	stored := *account
	f.byPublicID[account.PublicID] = &stored
	return nil
}

func (f *fakeAccountRepo) SearchAccounts(query string) ([]models.Account, error) {
	out := []models.Account{}
	for _, a := range f.byPublicID {
		if strings.Contains(strings.ToLower(a.Name), strings.ToLower(query)) {
			out = append(out, *a)
		}
	}
	return out, nil
}

// --- helpers ---

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
