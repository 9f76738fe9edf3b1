package repositories

import (
	"context"
	"time"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations. Every method
// that pairs a counter with a set change issues a single conditional UpdateOne
// so concurrent callers cannot observe a half-applied mutation.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id, content string, privacy models.Privacy) error
	DeletePost(ctx context.Context, id string) error
	DeletePostsByIDs(ctx context.Context, ids []string) error

	// SwapReaction atomically moves userID's reaction from prev to next; an
	// empty kind means "no reaction" on that side. The filter asserts the
	// previously observed state and ErrStaleDocument signals a lost race.
	SwapReaction(ctx context.Context, postID, userID string, prev, next models.ReactionKind) error

	AddShare(ctx context.Context, postID, userID string) error
	RemoveShare(ctx context.Context, postID, userID string) error

	IncrementCommentsCount(ctx context.Context, postID string) error
	SetCommentsCount(ctx context.Context, postID string, count int) error
	RemoveMediaFromPost(ctx context.Context, postID, mediaID string) error

	FindByOwnerInCommunity(ctx context.Context, kind models.CommunityKind, communityID, ownerID string) ([]models.Post, error)
	FindByCommunity(ctx context.Context, kind models.CommunityKind, communityID string) ([]models.Post, error)
	FindCommunityPosts(ctx context.Context, kind models.CommunityKind, communityID string, offset, limit int64) ([]models.Post, int64, error)
	FindHomeFeed(ctx context.Context, pageIDs, groupIDs, friendIDs []string, offset, limit int64) ([]models.Post, int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Reactions == nil {
		post.Reactions = models.NewReactionMap()
	}
	if post.ShareData.Users == nil {
		post.ShareData.Users = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return apperrors.Internal("failed to create post", err)
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parseObjectID(id, "post")
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, apperrors.Internal("post lookup failed", err)
	}
	return &post, nil
}

// GetPostsByIDs retrieves a batch of posts; missing ids are silently skipped
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	objIDs, err := parseObjectIDs(ids, "post")
	if err != nil {
		return nil, err
	}
	if len(objIDs) == 0 {
		return []models.Post{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, apperrors.Internal("post lookup failed", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Internal("post lookup failed", err)
	}
	return posts, nil
}

// UpdatePost updates a post's editable fields
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id, content string, privacy models.Privacy) error {
	objID, err := parseObjectID(id, "post")
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now()}
	if content != "" {
		set["content"] = content
	}
	if privacy != "" {
		set["privacy"] = privacy
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return apperrors.Internal("failed to update post", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("post not found")
	}
	return nil
}

// DeletePost deletes a post by ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, "post")
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Internal("failed to delete post", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("post not found")
	}
	return nil
}

// DeletePostsByIDs deletes a batch of posts; already-deleted ids are not an error
func (r *MongoPostRepository) DeletePostsByIDs(ctx context.Context, ids []string) error {
	objIDs, err := parseObjectIDs(ids, "post")
	if err != nil {
		return err
	}
	if len(objIDs) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}}); err != nil {
		return apperrors.Internal("failed to delete posts", err)
	}
	return nil
}

// SwapReaction applies one atomic reaction transition on a post document
func (r *MongoPostRepository) SwapReaction(ctx context.Context, postID, userID string, prev, next models.ReactionKind) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	return swapReaction(ctx, r.collection, objID, userID, prev, next)
}

// swapReaction is shared between posts and comments: one UpdateOne carries the
// pull/decrement of the old kind and the push/increment of the new kind, and
// the filter asserts the expected prior state so a concurrent toggle from the
// same user makes MatchedCount zero instead of corrupting the counters.
func swapReaction(ctx context.Context, coll *mongo.Collection, itemID primitive.ObjectID, userID string, prev, next models.ReactionKind) error {
	filter := bson.M{"_id": itemID}
	update := bson.M{}
	pull := bson.M{}
	addToSet := bson.M{}
	inc := bson.M{}

	if prev != "" {
		filter["reactions."+string(prev)+".users"] = userID
		pull["reactions."+string(prev)+".users"] = userID
		inc["reactions."+string(prev)+".count"] = -1
	} else {
		// first-time reaction: assert the user is in no kind's set
		for _, k := range models.ReactionKinds {
			filter["reactions."+string(k)+".users"] = bson.M{"$ne": userID}
		}
	}
	if next != "" {
		if prev != "" {
			filter["reactions."+string(next)+".users"] = bson.M{"$ne": userID}
		}
		addToSet["reactions."+string(next)+".users"] = userID
		inc["reactions."+string(next)+".count"] = 1
	}

	if len(pull) > 0 {
		update["$pull"] = pull
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Internal("failed to apply reaction", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// AddShare records a share atomically; ErrStaleDocument means the user
// already shared the post (or the post is gone)
func (r *MongoPostRepository) AddShare(ctx context.Context, postID, userID string) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "share_data.users": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"share_data.users": userID},
			"$inc":      bson.M{"share_data.count": 1},
		})
	if err != nil {
		return apperrors.Internal("failed to record share", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// RemoveShare removes a user's share atomically
func (r *MongoPostRepository) RemoveShare(ctx context.Context, postID, userID string) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "share_data.users": userID},
		bson.M{
			"$pull": bson.M{"share_data.users": userID},
			"$inc":  bson.M{"share_data.count": -1},
		})
	if err != nil {
		return apperrors.Internal("failed to remove share", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// IncrementCommentsCount bumps the denormalized comment counter by one
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comments_count": 1}})
	if err != nil {
		return apperrors.Internal("failed to increment comments count", err)
	}
	return nil
}

// SetCommentsCount overwrites the comment counter with a recomputed value
func (r *MongoPostRepository) SetCommentsCount(ctx context.Context, postID string, count int) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"comments_count": count}})
	if err != nil {
		return apperrors.Internal("failed to set comments count", err)
	}
	return nil
}

// RemoveMediaFromPost pulls one media reference off a post
func (r *MongoPostRepository) RemoveMediaFromPost(ctx context.Context, postID, mediaID string) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$pull": bson.M{"media": bson.M{"media_id": mediaID}}})
	if err != nil {
		return apperrors.Internal("failed to remove media", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("post not found")
	}
	if res.ModifiedCount == 0 {
		return apperrors.NotFound("media not found on post")
	}
	return nil
}

// FindByOwnerInCommunity lists a user's posts inside one community
func (r *MongoPostRepository) FindByOwnerInCommunity(ctx context.Context, kind models.CommunityKind, communityID, ownerID string) ([]models.Post, error) {
	return r.findAll(ctx, bson.M{"community": kind, "community_id": communityID, "user_id": ownerID})
}

// FindByCommunity lists every post scoped to one community
func (r *MongoPostRepository) FindByCommunity(ctx context.Context, kind models.CommunityKind, communityID string) ([]models.Post, error) {
	return r.findAll(ctx, bson.M{"community": kind, "community_id": communityID})
}

func (r *MongoPostRepository) findAll(ctx context.Context, filter bson.M) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperrors.Internal("post lookup failed", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Internal("post lookup failed", err)
	}
	return posts, nil
}

// FindCommunityPosts returns one page of a community's posts plus the total
// match count, both from a single aggregation
func (r *MongoPostRepository) FindCommunityPosts(ctx context.Context, kind models.CommunityKind, communityID string, offset, limit int64) ([]models.Post, int64, error) {
	return r.findPage(ctx, bson.M{"community": kind, "community_id": communityID}, offset, limit)
}

// FindHomeFeed returns one page of the merged home feed: posts from followed
// pages, joined groups, and friends' personal posts that are not only_me
func (r *MongoPostRepository) FindHomeFeed(ctx context.Context, pageIDs, groupIDs, friendIDs []string, offset, limit int64) ([]models.Post, int64, error) {
	match := bson.M{"$or": bson.A{
		bson.M{"community": models.CommunityPage, "community_id": bson.M{"$in": emptyToSlice(pageIDs)}},
		bson.M{"community": models.CommunityGroup, "community_id": bson.M{"$in": emptyToSlice(groupIDs)}},
		bson.M{
			"community": models.CommunityPersonal,
			"user_id":   bson.M{"$in": emptyToSlice(friendIDs)},
			"privacy":   bson.M{"$in": bson.A{models.PrivacyPublic, models.PrivacyFriendsOnly}},
		},
	}}
	return r.findPage(ctx, match, offset, limit)
}

// findPage runs the shared $facet aggregation: page slice and total count in
// the same logical query, as the final-page flag requires
func (r *MongoPostRepository) findPage(ctx context.Context, match bson.M, offset, limit int64) ([]models.Post, int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$facet", Value: bson.M{
			"items": bson.A{bson.M{"$skip": offset}, bson.M{"$limit": limit}},
			"total": bson.A{bson.M{"$count": "count"}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, apperrors.Internal("feed query failed", err)
	}
	defer cursor.Close(ctx)

	var pages []struct {
		Items []models.Post `bson:"items"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err = cursor.All(ctx, &pages); err != nil {
		return nil, 0, apperrors.Internal("feed query failed", err)
	}
	if len(pages) == 0 {
		return []models.Post{}, 0, nil
	}

	total := int64(0)
	if len(pages[0].Total) > 0 {
		total = pages[0].Total[0].Count
	}
	return pages[0].Items, total, nil
}

// emptyToSlice keeps $in filters valid when a user follows or joins nothing
func emptyToSlice(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
