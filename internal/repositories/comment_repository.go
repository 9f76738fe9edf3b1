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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, id, content string) error
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByIDs(ctx context.Context, ids []string) error
	DeleteCommentsByPostIDs(ctx context.Context, postIDs []string) error

	// SwapReaction has the same contract as PostRepository.SwapReaction
	SwapReaction(ctx context.Context, commentID, userID string, prev, next models.ReactionKind) error

	FindByPostID(ctx context.Context, postID string, offset, limit int64) ([]models.Comment, int64, error)
	FindByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error)
	CountByPostID(ctx context.Context, postID string) (int64, error)

	// FindForCleanup collects every comment touched by a member's departure:
	// comments sitting on the member's own posts plus comments the member
	// authored anywhere inside the community
	FindForCleanup(ctx context.Context, postIDs []string, ownerID string, kind models.CommunityKind, communityID string) ([]models.Comment, error)
	FindByCommunity(ctx context.Context, kind models.CommunityKind, communityID string) ([]models.Comment, error)
	RemoveMediaFromComment(ctx context.Context, commentID, mediaID string) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment creates a new comment in MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if comment.Reactions == nil {
		comment.Reactions = models.NewReactionMap()
	}
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return apperrors.Internal("failed to create comment", err)
	}
	return nil
}

// GetCommentByID retrieves a comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := parseObjectID(id, "comment")
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("comment not found")
		}
		return nil, apperrors.Internal("comment lookup failed", err)
	}
	return &comment, nil
}

// UpdateComment updates a comment's content
func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id, content string) error {
	objID, err := parseObjectID(id, "comment")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}})
	if err != nil {
		return apperrors.Internal("failed to update comment", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("comment not found")
	}
	return nil
}

// DeleteComment deletes a comment by ID
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, "comment")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Internal("failed to delete comment", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("comment not found")
	}
	return nil
}

// DeleteCommentsByIDs deletes a batch of comments
func (r *MongoCommentRepository) DeleteCommentsByIDs(ctx context.Context, ids []string) error {
	objIDs, err := parseObjectIDs(ids, "comment")
	if err != nil {
		return err
	}
	if len(objIDs) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}}); err != nil {
		return apperrors.Internal("failed to delete comments", err)
	}
	return nil
}

// DeleteCommentsByPostIDs deletes every comment under the given posts
func (r *MongoCommentRepository) DeleteCommentsByPostIDs(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"post_id": bson.M{"$in": postIDs}}); err != nil {
		return apperrors.Internal("failed to delete comments", err)
	}
	return nil
}

// SwapReaction applies one atomic reaction transition on a comment document
func (r *MongoCommentRepository) SwapReaction(ctx context.Context, commentID, userID string, prev, next models.ReactionKind) error {
	objID, err := parseObjectID(commentID, "comment")
	if err != nil {
		return err
	}
	return swapReaction(ctx, r.collection, objID, userID, prev, next)
}

// FindByPostID returns one page of a post's comments plus the total count
func (r *MongoCommentRepository) FindByPostID(ctx context.Context, postID string, offset, limit int64) ([]models.Comment, int64, error) {
	total, err := r.CountByPostID(ctx, postID)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSkip(offset).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": postID}, findOptions)
	if err != nil {
		return nil, 0, apperrors.Internal("comment lookup failed", err)
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, 0, apperrors.Internal("comment lookup failed", err)
	}
	return comments, total, nil
}

// FindByPostIDs lists every comment under the given posts
func (r *MongoCommentRepository) FindByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return []models.Comment{}, nil
	}
	return r.findAll(ctx, bson.M{"post_id": bson.M{"$in": postIDs}})
}

// CountByPostID counts the surviving comments on a post. Cleanup uses this to
// recompute comments_count instead of decrementing blindly.
func (r *MongoCommentRepository) CountByPostID(ctx context.Context, postID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, apperrors.Internal("comment count failed", err)
	}
	return count, nil
}

// FindForCleanup collects comments affected by a member's departure
func (r *MongoCommentRepository) FindForCleanup(ctx context.Context, postIDs []string, ownerID string, kind models.CommunityKind, communityID string) ([]models.Comment, error) {
	or := bson.A{
		bson.M{"user_id": ownerID, "community": kind, "community_id": communityID},
	}
	if len(postIDs) > 0 {
		or = append(or, bson.M{"post_id": bson.M{"$in": postIDs}})
	}
	return r.findAll(ctx, bson.M{"$or": or})
}

// FindByCommunity lists every comment scoped to one community
func (r *MongoCommentRepository) FindByCommunity(ctx context.Context, kind models.CommunityKind, communityID string) ([]models.Comment, error) {
	return r.findAll(ctx, bson.M{"community": kind, "community_id": communityID})
}

func (r *MongoCommentRepository) findAll(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("comment lookup failed", err)
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, apperrors.Internal("comment lookup failed", err)
	}
	return comments, nil
}

// RemoveMediaFromComment pulls one media reference off a comment
func (r *MongoCommentRepository) RemoveMediaFromComment(ctx context.Context, commentID, mediaID string) error {
	objID, err := parseObjectID(commentID, "comment")
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
		return apperrors.NotFound("comment not found")
	}
	if res.ModifiedCount == 0 {
		return apperrors.NotFound("media not found on comment")
	}
	return nil
}
