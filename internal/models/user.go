package models

import "time"

// TimelineEntry is one row of a user's personal timeline projection. It keeps
// enough of the post's scope to privacy-filter the timeline without loading
// every post first.
type TimelineEntry struct {
	PostID      string        `json:"post_id" bson:"post_id"`
	ShareDate   time.Time     `json:"share_date" bson:"share_date"`
	Privacy     Privacy       `json:"privacy" bson:"privacy"`
	Community   CommunityKind `json:"community" bson:"community"`
	CommunityID string        `json:"community_id,omitempty" bson:"community_id,omitempty"`
}

// UserGraph is a user's relationship document in MongoDB, keyed by the
// account's public id. The community lists mirror the authoritative
// Members/Admins arrays on the community documents.
type UserGraph struct {
	ID            string          `json:"id" bson:"_id"`
	Friends       []string        `json:"friends" bson:"friends"`
	JoinedGroups  []string        `json:"joined_groups" bson:"joined_groups"`
	OwnedGroups   []string        `json:"owned_groups" bson:"owned_groups"`
	AdminGroups   []string        `json:"admin_groups" bson:"admin_groups"`
	FollowedPages []string        `json:"followed_pages" bson:"followed_pages"`
	OwnedPages    []string        `json:"owned_pages" bson:"owned_pages"`
	AdminPages    []string        `json:"admin_pages" bson:"admin_pages"`
	SavedPosts    []string        `json:"saved_posts" bson:"saved_posts"`
	SharedPosts   []string        `json:"shared_posts" bson:"shared_posts"`
	AllPosts      []TimelineEntry `json:"all_posts" bson:"all_posts"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

// IsFriend reports whether the other user is in the friends list
func (u *UserGraph) IsFriend(otherID string) bool {
	for _, f := range u.Friends {
		if f == otherID {
			return true
		}
	}
	return false
}

// HasSaved reports whether the post is in the user's bookmarks
func (u *UserGraph) HasSaved(postID string) bool {
	for _, p := range u.SavedPosts {
		if p == postID {
			return true
		}
	}
	return false
}

// HasShared reports whether the user shared the post
func (u *UserGraph) HasShared(postID string) bool {
	for _, p := range u.SharedPosts {
		if p == postID {
			return true
		}
	}
	return false
}
