package repositories

import (
	"context"
	"time"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommunityRepository defines the interface for page/group data operations.
// The Members array and MembersCount live on the same document, so every
// membership transition is one conditional UpdateOne: the counter can never
// drift from the set, and re-running a removal cannot double-decrement.
type CommunityRepository interface {
	CreateCommunity(ctx context.Context, community *models.Community) error
	GetCommunityByID(ctx context.Context, id string) (*models.Community, error)
	UpdateCommunity(ctx context.Context, id string, set *models.UpdateCommunityRequest) error
	DeleteCommunity(ctx context.Context, id string) error

	AddMember(ctx context.Context, id, userID string) error
	RemoveMember(ctx context.Context, id, userID string) error
	AddAdmin(ctx context.Context, id, userID string) error
	RemoveAdmin(ctx context.Context, id, userID string) error

	AddJoinRequest(ctx context.Context, id string, request models.JoinRequest) error
	RemoveJoinRequest(ctx context.Context, id, requestID string) error
}

// MongoCommunityRepository implements CommunityRepository for MongoDB
type MongoCommunityRepository struct {
	collection *mongo.Collection
}

// NewMongoCommunityRepository creates a new MongoCommunityRepository
func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	return &MongoCommunityRepository{collection: db.Collection("communities")}
}

// CreateCommunity creates a new page or group
func (r *MongoCommunityRepository) CreateCommunity(ctx context.Context, community *models.Community) error {
	community.ID = primitive.NewObjectID()
	community.CreatedAt = time.Now()
	community.UpdatedAt = community.CreatedAt
	if community.Admins == nil {
		community.Admins = []string{}
	}
	if community.Members == nil {
		community.Members = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, community); err != nil {
		return apperrors.Internal("failed to create community", err)
	}
	return nil
}

// GetCommunityByID retrieves a community by ID
func (r *MongoCommunityRepository) GetCommunityByID(ctx context.Context, id string) (*models.Community, error) {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return nil, err
	}

	var community models.Community
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&community)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("community not found")
		}
		return nil, apperrors.Internal("community lookup failed", err)
	}
	return &community, nil
}

// UpdateCommunity updates a community's profile fields
func (r *MongoCommunityRepository) UpdateCommunity(ctx context.Context, id string, req *models.UpdateCommunityRequest) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.ProfileMedia != nil {
		set["profile_media"] = req.ProfileMedia
	}
	if req.CoverMedia != nil {
		set["cover_media"] = req.CoverMedia
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return apperrors.Internal("failed to update community", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("community not found")
	}
	return nil
}

// DeleteCommunity deletes the community document itself; the cascade is the
// cleanup service's job
func (r *MongoCommunityRepository) DeleteCommunity(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Internal("failed to delete community", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("community not found")
	}
	return nil
}

// AddMember adds a user to the membership edge and bumps the counter in one
// update. ErrStaleDocument means the user is already a member, holds a higher
// role, or the community disappeared.
func (r *MongoCommunityRepository) AddMember(ctx context.Context, id, userID string) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":      objID,
			"owner_id": bson.M{"$ne": userID},
			"admins":   bson.M{"$ne": userID},
			"members":  bson.M{"$ne": userID},
		},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$inc":      bson.M{"members_count": 1},
			"$pull":     bson.M{"join_requests": bson.M{"user_id": userID}},
		})
	if err != nil {
		return apperrors.Internal("failed to add member", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// RemoveMember removes a user from the membership and admin edges with a
// guarded decrement: the filter requires actual membership, so replays are
// no-ops instead of double-decrements
func (r *MongoCommunityRepository) RemoveMember(ctx context.Context, id, userID string) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id": objID,
			"$or": bson.A{
				bson.M{"members": userID},
				bson.M{"admins": userID},
			},
		},
		bson.M{
			"$pull": bson.M{"members": userID, "admins": userID},
			"$inc":  bson.M{"members_count": -1},
		})
	if err != nil {
		return apperrors.Internal("failed to remove member", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// AddAdmin promotes an existing member: the member entry moves to the admin
// set in one update so the user never carries two roles
func (r *MongoCommunityRepository) AddAdmin(ctx context.Context, id, userID string) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "members": userID, "admins": bson.M{"$ne": userID}},
		bson.M{
			"$pull":     bson.M{"members": userID},
			"$addToSet": bson.M{"admins": userID},
		})
	if err != nil {
		return apperrors.Internal("failed to promote admin", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// RemoveAdmin demotes an admin back to plain member
func (r *MongoCommunityRepository) RemoveAdmin(ctx context.Context, id, userID string) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "admins": userID},
		bson.M{
			"$pull":     bson.M{"admins": userID},
			"$addToSet": bson.M{"members": userID},
		})
	if err != nil {
		return apperrors.Internal("failed to demote admin", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// AddJoinRequest queues a membership application; the filter keeps the
// invariant that a request exists only while the user is not a member and has
// no other pending request
func (r *MongoCommunityRepository) AddJoinRequest(ctx context.Context, id string, request models.JoinRequest) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":                   objID,
			"owner_id":              bson.M{"$ne": request.UserID},
			"admins":                bson.M{"$ne": request.UserID},
			"members":               bson.M{"$ne": request.UserID},
			"join_requests.user_id": bson.M{"$ne": request.UserID},
		},
		bson.M{"$push": bson.M{"join_requests": request}})
	if err != nil {
		return apperrors.Internal("failed to queue join request", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}

// RemoveJoinRequest drops a queued request; ErrStaleDocument means the
// request id is stale (already handled) or the community is gone
func (r *MongoCommunityRepository) RemoveJoinRequest(ctx context.Context, id, requestID string) error {
	objID, err := parseObjectID(id, "community")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "join_requests.request_id": requestID},
		bson.M{"$pull": bson.M{"join_requests": bson.M{"request_id": requestID}}})
	if err != nil {
		return apperrors.Internal("failed to remove join request", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleDocument
	}
	return nil
}
