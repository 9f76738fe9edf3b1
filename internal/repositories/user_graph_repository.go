package repositories

import (
	"context"
	"time"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserGraphRepository defines the interface for the per-user relationship
// document: friends, community mirrors, bookmarks, shares and the personal
// timeline projection.
type UserGraphRepository interface {
	CreateUserGraph(ctx context.Context, userID string) error
	GetUserGraph(ctx context.Context, userID string) (*models.UserGraph, error)

	AddFriendEdge(ctx context.Context, userA, userB string) error
	RemoveFriendEdge(ctx context.Context, userA, userB string) error

	// AddCommunityRef / RemoveCommunityRef maintain the denormalized mirror of
	// the community document's authoritative role sets
	AddCommunityRef(ctx context.Context, userID string, kind models.CommunityKind, role models.Role, communityID string) error
	RemoveCommunityRef(ctx context.Context, userID string, kind models.CommunityKind, communityID string) error
	RemoveCommunityRefFromAll(ctx context.Context, kind models.CommunityKind, communityID string) error

	AddSavedPost(ctx context.Context, userID, postID string) error
	RemoveSavedPost(ctx context.Context, userID, postID string) error
	AddSharedPost(ctx context.Context, userID, postID string) error
	RemoveSharedPost(ctx context.Context, userID, postID string) error

	AppendTimelineEntry(ctx context.Context, userID string, entry models.TimelineEntry) error
	// UpdateTimelinePrivacy rewrites the privacy snapshot on one timeline
	// entry so a privacy edit on the post is reflected in the projection
	UpdateTimelinePrivacy(ctx context.Context, userID, postID string, privacy models.Privacy) error
	RemoveTimelineEntry(ctx context.Context, userID, postID string) error
	// RemovePostRefs scrubs deleted posts out of every user's timeline,
	// bookmarks and shares; safe to re-run
	RemovePostRefs(ctx context.Context, postIDs []string) error
}

// MongoUserGraphRepository implements UserGraphRepository for MongoDB
type MongoUserGraphRepository struct {
	collection *mongo.Collection
}

// NewMongoUserGraphRepository creates a new MongoUserGraphRepository
func NewMongoUserGraphRepository(db *mongo.Database) *MongoUserGraphRepository {
	return &MongoUserGraphRepository{collection: db.Collection("users")}
}

// CreateUserGraph seeds an empty relationship document for a new account
func (r *MongoUserGraphRepository) CreateUserGraph(ctx context.Context, userID string) error {
	now := time.Now()
	graph := models.UserGraph{
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
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.collection.InsertOne(ctx, graph); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("user graph already exists")
		}
		return apperrors.Internal("failed to create user graph", err)
	}
	return nil
}

// GetUserGraph retrieves a user's relationship document
func (r *MongoUserGraphRepository) GetUserGraph(ctx context.Context, userID string) (*models.UserGraph, error) {
	var graph models.UserGraph
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&graph)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("user graph lookup failed", err)
	}
	return &graph, nil
}

// AddFriendEdge writes the friendship into both users' documents
func (r *MongoUserGraphRepository) AddFriendEdge(ctx context.Context, userA, userB string) error {
	if err := r.update(ctx, userA, bson.M{"$addToSet": bson.M{"friends": userB}}); err != nil {
		return err
	}
	return r.update(ctx, userB, bson.M{"$addToSet": bson.M{"friends": userA}})
}

// RemoveFriendEdge removes the friendship from both users' documents
func (r *MongoUserGraphRepository) RemoveFriendEdge(ctx context.Context, userA, userB string) error {
	if err := r.update(ctx, userA, bson.M{"$pull": bson.M{"friends": userB}}); err != nil {
		return err
	}
	return r.update(ctx, userB, bson.M{"$pull": bson.M{"friends": userA}})
}

// AddCommunityRef mirrors a community role into the user's lists
func (r *MongoUserGraphRepository) AddCommunityRef(ctx context.Context, userID string, kind models.CommunityKind, role models.Role, communityID string) error {
	field, err := communityRefField(kind, role)
	if err != nil {
		return err
	}
	return r.update(ctx, userID, bson.M{"$addToSet": bson.M{field: communityID}})
}

// RemoveCommunityRef drops the community from every role list of one user
func (r *MongoUserGraphRepository) RemoveCommunityRef(ctx context.Context, userID string, kind models.CommunityKind, communityID string) error {
	return r.update(ctx, userID, bson.M{"$pull": communityPullFields(kind, communityID)})
}

// RemoveCommunityRefFromAll drops a deleted community from every user document
func (r *MongoUserGraphRepository) RemoveCommunityRefFromAll(ctx context.Context, kind models.CommunityKind, communityID string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{}, bson.M{"$pull": communityPullFields(kind, communityID)})
	if err != nil {
		return apperrors.Internal("failed to scrub community refs", err)
	}
	return nil
}

// AddSavedPost bookmarks a post; ErrStaleDocument means it was already saved
func (r *MongoUserGraphRepository) AddSavedPost(ctx context.Context, userID, postID string) error {
	return r.guardedUpdate(ctx,
		bson.M{"_id": userID, "saved_posts": bson.M{"$ne": postID}},
		bson.M{"$addToSet": bson.M{"saved_posts": postID}})
}

// RemoveSavedPost drops a bookmark; ErrStaleDocument means it was not saved
func (r *MongoUserGraphRepository) RemoveSavedPost(ctx context.Context, userID, postID string) error {
	return r.guardedUpdate(ctx,
		bson.M{"_id": userID, "saved_posts": postID},
		bson.M{"$pull": bson.M{"saved_posts": postID}})
}

// AddSharedPost records a share in the user's document
func (r *MongoUserGraphRepository) AddSharedPost(ctx context.Context, userID, postID string) error {
	return r.update(ctx, userID, bson.M{"$addToSet": bson.M{"shared_posts": postID}})
}

// RemoveSharedPost drops a share from the user's document
func (r *MongoUserGraphRepository) RemoveSharedPost(ctx context.Context, userID, postID string) error {
	return r.update(ctx, userID, bson.M{"$pull": bson.M{"shared_posts": postID}})
}

// AppendTimelineEntry prepends a row to the user's timeline projection
func (r *MongoUserGraphRepository) AppendTimelineEntry(ctx context.Context, userID string, entry models.TimelineEntry) error {
	return r.update(ctx, userID, bson.M{
		"$push": bson.M{"all_posts": bson.M{"$each": bson.A{entry}, "$position": 0}},
	})
}

// UpdateTimelinePrivacy rewrites the privacy snapshot on one timeline entry
func (r *MongoUserGraphRepository) UpdateTimelinePrivacy(ctx context.Context, userID, postID string, privacy models.Privacy) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "all_posts.post_id": postID},
		bson.M{"$set": bson.M{"all_posts.$.privacy": privacy, "updated_at": time.Now()}})
	if err != nil {
		return apperrors.Internal("failed to update timeline privacy", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("timeline entry not found")
	}
	return nil
}

// RemoveTimelineEntry drops one post from one user's timeline projection
func (r *MongoUserGraphRepository) RemoveTimelineEntry(ctx context.Context, userID, postID string) error {
	return r.update(ctx, userID, bson.M{"$pull": bson.M{"all_posts": bson.M{"post_id": postID}}})
}

// RemovePostRefs scrubs deleted posts from every user document
func (r *MongoUserGraphRepository) RemovePostRefs(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{
		"all_posts":    bson.M{"post_id": bson.M{"$in": postIDs}},
		"saved_posts":  bson.M{"$in": postIDs},
		"shared_posts": bson.M{"$in": postIDs},
	}})
	if err != nil {
		return apperrors.Internal("failed to scrub post refs", err)
	}
	return nil
}

func (r *MongoUserGraphRepository) update(ctx context.Context, userID string, update bson.M) error {
	if _, ok := update["$set"]; !ok {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return apperrors.Internal("failed to update user graph", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (r *MongoUserGraphRepository) guardedUpdate(ctx context.Context, filter, update bson.M) error {
	update["$set"] = bson.M{"updated_at": time.Now()}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Internal("failed to update user graph", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

func communityRefField(kind models.CommunityKind, role models.Role) (string, error) {
	switch kind {
	case models.CommunityGroup:
		switch role {
		case models.RoleMember:
			return "joined_groups", nil
		case models.RoleAdmin:
			return "admin_groups", nil
		case models.RoleOwner:
			return "owned_groups", nil
		}
	case models.CommunityPage:
		switch role {
		case models.RoleMember:
			return "followed_pages", nil
		case models.RoleAdmin:
			return "admin_pages", nil
		case models.RoleOwner:
			return "owned_pages", nil
		}
	}
	return "", apperrors.InvalidInput("unknown community kind or role")
}

func communityPullFields(kind models.CommunityKind, communityID string) bson.M {
	if kind == models.CommunityGroup {
		return bson.M{
			"joined_groups": communityID,
			"admin_groups":  communityID,
			"owned_groups":  communityID,
		}
	}
	return bson.M{
		"followed_pages": communityID,
		"admin_pages":    communityID,
		"owned_pages":    communityID,
	}
}
