package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// ItemKind selects a reaction target
type ItemKind string

const (
	ItemPost    ItemKind = "post"
	ItemComment ItemKind = "comment"
)

// Valid reports whether k is a known item kind
func (k ItemKind) Valid() bool {
	return k == ItemPost || k == ItemComment
}

// ToggleResult reports the reaction transition that was applied. Empty kinds
// mean "no reaction" on that side.
type ToggleResult struct {
	Previous models.ReactionKind `json:"previous_reaction,omitempty"`
	New      models.ReactionKind `json:"new_reaction,omitempty"`
}

// maxToggleRetries bounds the compare-and-swap loop before giving up
const maxToggleRetries = 3

// reactionOps is the per-kind capability row: how to load the target, check
// visibility and apply the swap
type reactionOps struct {
	load func(ctx context.Context, id string) (models.ReactionMap, string, error)
	view func(ctx context.Context, viewerID, id string) error
	swap func(ctx context.Context, id, userID string, prev, next models.ReactionKind) error
}

// ReactionService applies at-most-one-reaction-per-user-per-item semantics.
// The authoritative read and the mutation are combined: the read picks the
// expected prior state and the single conditional update asserts it, so two
// racing toggles from the same user serialize instead of losing an update.
type ReactionService struct {
	targets map[ItemKind]reactionOps
	outbox  *NotificationService
	log     *logrus.Logger
}

// NewReactionService creates a new ReactionService
func NewReactionService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	privacy *PrivacyService,
	outbox *NotificationService,
	log *logrus.Logger,
) *ReactionService {
	s := &ReactionService{outbox: outbox, log: log}
	s.targets = map[ItemKind]reactionOps{
		ItemPost: {
			load: func(ctx context.Context, id string) (models.ReactionMap, string, error) {
				post, err := posts.GetPostByID(ctx, id)
				if err != nil {
					return nil, "", err
				}
				return post.Reactions, post.UserID, nil
			},
			view: func(ctx context.Context, viewerID, id string) error {
				post, err := posts.GetPostByID(ctx, id)
				if err != nil {
					return err
				}
				return privacy.RequireViewPost(ctx, viewerID, post)
			},
			swap: posts.SwapReaction,
		},
		ItemComment: {
			load: func(ctx context.Context, id string) (models.ReactionMap, string, error) {
				comment, err := comments.GetCommentByID(ctx, id)
				if err != nil {
					return nil, "", err
				}
				return comment.Reactions, comment.UserID, nil
			},
			view: func(ctx context.Context, viewerID, id string) error {
				comment, err := comments.GetCommentByID(ctx, id)
				if err != nil {
					return err
				}
				_, err = privacy.VisibleParentPost(ctx, viewerID, comment)
				return err
			},
			swap: comments.SwapReaction,
		},
	}
	return s
}

// Toggle flips viewerID's reaction of the given kind on the item: absent
// becomes present, the same kind comes off, a different kind is replaced in
// one atomic step. The first reaction on someone else's item notifies them.
func (s *ReactionService) Toggle(ctx context.Context, itemKind ItemKind, itemID string, kind models.ReactionKind, viewerID string) (*ToggleResult, error) {
	if viewerID == "" {
		return nil, apperrors.Forbidden("sign in to react")
	}
	if !kind.Valid() {
		return nil, apperrors.InvalidInput("unknown reaction kind")
	}
	ops, ok := s.targets[itemKind]
	if !ok {
		return nil, apperrors.InvalidInput("unknown item kind")
	}

	if err := ops.view(ctx, viewerID, itemID); err != nil {
		return nil, err
	}

	var ownerID string
	for attempt := 0; attempt < maxToggleRetries; attempt++ {
		reactions, owner, err := ops.load(ctx, itemID)
		if err != nil {
			return nil, err
		}
		ownerID = owner

		prev, _ := reactions.KindOf(viewerID)
		next := kind
		if prev == kind {
			next = "" // toggling the same kind removes the reaction
		}

		err = ops.swap(ctx, itemID, viewerID, prev, next)
		if errors.Is(err, repositories.ErrStaleDocument) {
			continue // lost the race, re-read and retry
		}
		if err != nil {
			return nil, err
		}

		if prev == "" && next != "" && ownerID != viewerID {
			s.outbox.Push(&models.Notification{
				Type:        models.NotificationReaction,
				ActorID:     viewerID,
				RecipientID: ownerID,
				TargetID:    itemID,
				TargetType:  string(itemKind),
				Message:     fmt.Sprintf("reacted %s to your %s", kind, itemKind),
			})
		}
		return &ToggleResult{Previous: prev, New: next}, nil
	}

	s.log.WithFields(logrus.Fields{
		"item_kind": itemKind,
		"item_id":   itemID,
		"user_id":   viewerID,
	}).Warn("reaction toggle contention exhausted retries")
	return nil, apperrors.Internal("reaction toggle kept losing races, try again", nil)
}
