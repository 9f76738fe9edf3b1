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

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	DeleteStory(ctx context.Context, id string) error
	// FindVisible lists unexpired stories from the given authors, newest first
	FindVisible(ctx context.Context, userIDs []string, now time.Time) ([]models.Story, error)
}

// MongoStoryRepository implements StoryRepository for MongoDB
type MongoStoryRepository struct {
	collection *mongo.Collection
}

// NewMongoStoryRepository creates a new MongoStoryRepository
func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories")}
}

// CreateStory creates a new story
func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	if _, err := r.collection.InsertOne(ctx, story); err != nil {
		return apperrors.Internal("failed to create story", err)
	}
	return nil
}

// GetStoryByID retrieves a story by ID
func (r *MongoStoryRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := parseObjectID(id, "story")
	if err != nil {
		return nil, err
	}

	var story models.Story
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&story)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("story not found")
		}
		return nil, apperrors.Internal("story lookup failed", err)
	}
	return &story, nil
}

// DeleteStory deletes a story by ID
func (r *MongoStoryRepository) DeleteStory(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, "story")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Internal("failed to delete story", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("story not found")
	}
	return nil
}

// FindVisible lists unexpired stories from the given authors
func (r *MongoStoryRepository) FindVisible(ctx context.Context, userIDs []string, now time.Time) ([]models.Story, error) {
	if len(userIDs) == 0 {
		return []models.Story{}, nil
	}
	cursor, err := r.collection.Find(ctx,
		bson.M{"user_id": bson.M{"$in": userIDs}, "expires_at": bson.M{"$gt": now}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperrors.Internal("story lookup failed", err)
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, apperrors.Internal("story lookup failed", err)
	}
	return stories, nil
}
