package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedFixture struct {
	posts       *fakePostRepo
	users       *fakeUserGraphRepo
	communities *fakeCommunityRepo
	svc         *FeedService
}

func newFeedFixture(t *testing.T, userIDs ...string) *feedFixture {
	t.Helper()
	f := &feedFixture{
		posts:       newFakePostRepo(),
		users:       newFakeUserGraphRepo(),
		communities: newFakeCommunityRepo(),
	}
	ctx := context.Background()
	for _, u := range userIDs {
		require.NoError(t, f.users.CreateUserGraph(ctx, u))
	}
	privacy := NewPrivacyService(f.users, f.communities, f.posts)
	f.svc = NewFeedService(f.posts, f.users, f.communities, privacy)
	return f
}

func (f *feedFixture) addPost(t *testing.T, p *models.Post) *models.Post {
	t.Helper()
	require.NoError(t, f.posts.CreatePost(context.Background(), p))
	return p
}

func (f *feedFixture) addTimeline(t *testing.T, p *models.Post) *models.Post {
	t.Helper()
	f.addPost(t, p)
	entry := models.TimelineEntry{
		PostID:    p.ID.Hex(),
		Community: p.Community,
		Privacy:   p.Privacy,
	}
	require.NoError(t, f.users.AppendTimelineEntry(context.Background(), p.UserID, entry))
	return p
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, int64(0), Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, int64(10), Pagination{Page: 2, Limit: 10}.Offset())
	// skip pulls the window back by the optimistically prepended items
	assert.Equal(t, int64(7), Pagination{Page: 2, Limit: 10, Skip: 3}.Offset())
	// skip never pushes the offset below zero
	assert.Equal(t, int64(0), Pagination{Page: 1, Limit: 10, Skip: 5}.Offset())
}

func TestHomeFeedUnion(t *testing.T) {
	f := newFeedFixture(t, "viewer", "friend", "stranger", "pal")
	ctx := context.Background()

	page := &models.Community{Kind: models.CommunityPage, Name: "p", OwnerID: "pal"}
	require.NoError(t, f.communities.CreateCommunity(ctx, page))
	group := &models.Community{Kind: models.CommunityGroup, Name: "g", OwnerID: "pal", Privacy: models.GroupPublic}
	require.NoError(t, f.communities.CreateCommunity(ctx, group))
	otherGroup := &models.Community{Kind: models.CommunityGroup, Name: "other", OwnerID: "stranger", Privacy: models.GroupPublic}
	require.NoError(t, f.communities.CreateCommunity(ctx, otherGroup))

	require.NoError(t, f.users.AddCommunityRef(ctx, "viewer", models.CommunityPage, models.RoleMember, page.ID.Hex()))
	require.NoError(t, f.users.AddCommunityRef(ctx, "viewer", models.CommunityGroup, models.RoleMember, group.ID.Hex()))
	require.NoError(t, f.users.AddFriendEdge(ctx, "viewer", "friend"))

	fromPage := f.addPost(t, &models.Post{UserID: "pal", Content: "page post", Community: models.CommunityPage, CommunityID: page.ID.Hex(), Privacy: models.PrivacyPublic})
	fromGroup := f.addPost(t, &models.Post{UserID: "pal", Content: "group post", Community: models.CommunityGroup, CommunityID: group.ID.Hex(), Privacy: models.PrivacyPublic})
	fromFriend := f.addPost(t, &models.Post{UserID: "friend", Content: "friends only", Community: models.CommunityPersonal, Privacy: models.PrivacyFriendsOnly})
	// excluded: a friend's only_me post, a stranger's public post, and a
	// post in a group the viewer never joined
	f.addPost(t, &models.Post{UserID: "friend", Content: "private", Community: models.CommunityPersonal, Privacy: models.PrivacyOnlyMe})
	f.addPost(t, &models.Post{UserID: "stranger", Content: "public but unrelated", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	f.addPost(t, &models.Post{UserID: "stranger", Content: "foreign group", Community: models.CommunityGroup, CommunityID: otherGroup.ID.Hex(), Privacy: models.PrivacyPublic})

	feed, err := f.svc.HomeFeed(ctx, "viewer", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed.Items, 3)
	assert.True(t, feed.IsFinalPage)

	got := map[string]bool{}
	for _, item := range feed.Items {
		got[item.ID.Hex()] = true
	}
	assert.True(t, got[fromPage.ID.Hex()])
	assert.True(t, got[fromGroup.ID.Hex()])
	assert.True(t, got[fromFriend.ID.Hex()])
}

func TestHomeFeedRequiresViewer(t *testing.T) {
	f := newFeedFixture(t)
	_, err := f.svc.HomeFeed(context.Background(), "", Pagination{Page: 1, Limit: 10})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestHomeFeedAnnotations(t *testing.T) {
	f := newFeedFixture(t, "viewer", "friend")
	ctx := context.Background()
	require.NoError(t, f.users.AddFriendEdge(ctx, "viewer", "friend"))

	saved := f.addPost(t, &models.Post{UserID: "friend", Content: "a", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	shared := f.addPost(t, &models.Post{UserID: "friend", Content: "b", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	plain := f.addPost(t, &models.Post{UserID: "friend", Content: "c", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	require.NoError(t, f.users.AddSavedPost(ctx, "viewer", saved.ID.Hex()))
	require.NoError(t, f.users.AddSharedPost(ctx, "viewer", shared.ID.Hex()))

	feed, err := f.svc.HomeFeed(ctx, "viewer", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed.Items, 3)

	flags := map[string][2]bool{}
	for _, item := range feed.Items {
		flags[item.ID.Hex()] = [2]bool{item.IsShared, item.IsInBookmark}
	}
	assert.Equal(t, [2]bool{false, true}, flags[saved.ID.Hex()])
	assert.Equal(t, [2]bool{true, false}, flags[shared.ID.Hex()])
	assert.Equal(t, [2]bool{false, false}, flags[plain.ID.Hex()])
}

func TestHomeFeedPagination(t *testing.T) {
	f := newFeedFixture(t, "viewer", "friend")
	ctx := context.Background()
	require.NoError(t, f.users.AddFriendEdge(ctx, "viewer", "friend"))

	for i := 0; i < 25; i++ {
		f.addPost(t, &models.Post{UserID: "friend", Content: fmt.Sprintf("post %d", i), Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	}

	seen := map[string]bool{}
	for page := int64(1); ; page++ {
		feed, err := f.svc.HomeFeed(ctx, "viewer", Pagination{Page: page, Limit: 10})
		require.NoError(t, err)
		for _, item := range feed.Items {
			id := item.ID.Hex()
			assert.False(t, seen[id], "page %d repeated post %s", page, id)
			seen[id] = true
		}
		if feed.IsFinalPage {
			assert.Len(t, feed.Items, 5)
			break
		}
		require.Less(t, page, int64(10), "final page flag never set")
	}
	assert.Len(t, seen, 25)

	// a page past the end is empty and still final
	feed, err := f.svc.HomeFeed(ctx, "viewer", Pagination{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.True(t, feed.IsFinalPage)
}

func TestHomeFeedSkipCompensation(t *testing.T) {
	f := newFeedFixture(t, "viewer", "friend")
	ctx := context.Background()
	require.NoError(t, f.users.AddFriendEdge(ctx, "viewer", "friend"))

	for i := 0; i < 12; i++ {
		f.addPost(t, &models.Post{UserID: "friend", Content: fmt.Sprintf("post %d", i), Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	}

	first, err := f.svc.HomeFeed(ctx, "viewer", Pagination{Page: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, first.Items, 5)

	// skip pulls the page-two window back by the number of items the client
	// prepended itself, so the windows stay aligned
	second, err := f.svc.HomeFeed(ctx, "viewer", Pagination{Page: 2, Limit: 5, Skip: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 5)
	assert.Equal(t, first.Items[3].ID.Hex(), second.Items[0].ID.Hex())
	assert.Equal(t, first.Items[4].ID.Hex(), second.Items[1].ID.Hex())
	assert.False(t, second.IsFinalPage)
}

func TestPaginationNormalization(t *testing.T) {
	f := newFeedFixture(t, "viewer", "friend")
	ctx := context.Background()
	require.NoError(t, f.users.AddFriendEdge(ctx, "viewer", "friend"))
	f.addPost(t, &models.Post{UserID: "friend", Content: "a", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})

	// zero and out-of-range values fall back to page 1, limit 10
	feed, err := f.svc.HomeFeed(ctx, "viewer", Pagination{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, feed.Items, 1)
	assert.True(t, feed.IsFinalPage)
}

func TestUserTimelinePrivacyFiltering(t *testing.T) {
	f := newFeedFixture(t, "owner", "friend", "stranger")
	ctx := context.Background()
	require.NoError(t, f.users.AddFriendEdge(ctx, "owner", "friend"))

	pub := f.addTimeline(t, &models.Post{UserID: "owner", Content: "pub", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	friendsOnly := f.addTimeline(t, &models.Post{UserID: "owner", Content: "fo", Community: models.CommunityPersonal, Privacy: models.PrivacyFriendsOnly})
	onlyMe := f.addTimeline(t, &models.Post{UserID: "owner", Content: "om", Community: models.CommunityPersonal, Privacy: models.PrivacyOnlyMe})

	ids := func(page *FeedPage) []string {
		out := make([]string, len(page.Items))
		for i, item := range page.Items {
			out[i] = item.ID.Hex()
		}
		return out
	}

	self, err := f.svc.UserTimeline(ctx, "owner", "owner", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{pub.ID.Hex(), friendsOnly.ID.Hex(), onlyMe.ID.Hex()}, ids(self))

	asFriend, err := f.svc.UserTimeline(ctx, "owner", "friend", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{pub.ID.Hex(), friendsOnly.ID.Hex()}, ids(asFriend))

	asStranger, err := f.svc.UserTimeline(ctx, "owner", "stranger", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{pub.ID.Hex()}, ids(asStranger))

	anon, err := f.svc.UserTimeline(ctx, "owner", "", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{pub.ID.Hex()}, ids(anon))
	assert.True(t, anon.IsFinalPage)
}

func TestUserTimelineHonorsEditedPrivacy(t *testing.T) {
	f := newFeedFixture(t, "owner", "stranger")
	ctx := context.Background()

	post := f.addTimeline(t, &models.Post{UserID: "owner", Content: "was public", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	// the post is tightened to only_me but the projection snapshot still
	// says public; the post document must win
	require.NoError(t, f.posts.UpdatePost(ctx, post.ID.Hex(), "", models.PrivacyOnlyMe))

	asStranger, err := f.svc.UserTimeline(ctx, "owner", "stranger", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, asStranger.Items)

	asOwner, err := f.svc.UserTimeline(ctx, "owner", "owner", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, asOwner.Items, 1)
	assert.Equal(t, post.ID.Hex(), asOwner.Items[0].ID.Hex())
}

func TestUserTimelineDropsDeletedPosts(t *testing.T) {
	f := newFeedFixture(t, "owner")
	ctx := context.Background()

	kept := f.addTimeline(t, &models.Post{UserID: "owner", Content: "kept", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	gone := f.addTimeline(t, &models.Post{UserID: "owner", Content: "gone", Community: models.CommunityPersonal, Privacy: models.PrivacyPublic})
	// the post is deleted but the projection entry lingers
	require.NoError(t, f.posts.DeletePost(ctx, gone.ID.Hex()))

	feed, err := f.svc.UserTimeline(ctx, "owner", "owner", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, kept.ID.Hex(), feed.Items[0].ID.Hex())
	assert.True(t, feed.IsFinalPage, "final page is computed from the projection count")
}

func TestCommunityFeedMembersOnlyGate(t *testing.T) {
	f := newFeedFixture(t, "owner", "member", "stranger")
	ctx := context.Background()

	group := &models.Community{Kind: models.CommunityGroup, Name: "g", OwnerID: "owner", Privacy: models.GroupMembersOnly, Members: []string{"member"}, MembersCount: 1}
	require.NoError(t, f.communities.CreateCommunity(ctx, group))
	post := f.addPost(t, &models.Post{UserID: "member", Content: "inside", Community: models.CommunityGroup, CommunityID: group.ID.Hex(), Privacy: models.PrivacyPublic})

	feed, err := f.svc.CommunityFeed(ctx, models.CommunityGroup, group.ID.Hex(), "member", Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, post.ID.Hex(), feed.Items[0].ID.Hex())

	// the gate denies with NotFound so the group cannot be probed
	_, err = f.svc.CommunityFeed(ctx, models.CommunityGroup, group.ID.Hex(), "stranger", Pagination{Page: 1, Limit: 10})
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.svc.CommunityFeed(ctx, models.CommunityGroup, group.ID.Hex(), "", Pagination{Page: 1, Limit: 10})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCommunityFeedKindMismatch(t *testing.T) {
	f := newFeedFixture(t, "owner")
	ctx := context.Background()
	page := &models.Community{Kind: models.CommunityPage, Name: "p", OwnerID: "owner"}
	require.NoError(t, f.communities.CreateCommunity(ctx, page))

	_, err := f.svc.CommunityFeed(ctx, models.CommunityGroup, page.ID.Hex(), "owner", Pagination{Page: 1, Limit: 10})
	assert.True(t, apperrors.IsNotFound(err))
}
