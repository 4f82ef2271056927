package users

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
	"instagram-clone/backend/pkg/logger"
)

// FollowService maintains the mutual follow relation between users
type FollowService struct {
	store  store.UserStore
	logger *zap.Logger
}

// NewFollowService creates a new follow service
func NewFollowService(st store.UserStore) *FollowService {
	return &FollowService{store: st, logger: logger.Get()}
}

// FollowStats are the follower/following counts for a user
type FollowStats struct {
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
}

// Follow adds actor -> target to the graph and returns actor's updated
// following list. Self-follows are rejected; a repeated follow fails with
// Conflict. Both halves of the edge are written atomically.
func (s *FollowService) Follow(ctx context.Context, actorID, targetID primitive.ObjectID) ([]store.UserRef, error) {
	if actorID == targetID {
		return nil, apperrors.Validation("cannot follow yourself")
	}
	if _, err := s.store.UserByID(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.store.AddFollowEdge(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	s.logger.Info("User followed",
		zap.String("actor", actorID.Hex()),
		zap.String("target", targetID.Hex()),
	)
	return s.Following(ctx, actorID)
}

// Unfollow removes the edge and returns actor's updated following list.
// Unfollowing someone not followed fails with Conflict.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID primitive.ObjectID) ([]store.UserRef, error) {
	if actorID == targetID {
		return nil, apperrors.Validation("cannot unfollow yourself")
	}
	if _, err := s.store.UserByID(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.store.RemoveFollowEdge(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	s.logger.Info("User unfollowed",
		zap.String("actor", actorID.Hex()),
		zap.String("target", targetID.Hex()),
	)
	return s.Following(ctx, actorID)
}

// Followers returns the projected followers list
func (s *FollowService) Followers(ctx context.Context, userID primitive.ObjectID) ([]store.UserRef, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.UserRefsByIDs(ctx, u.Followers)
}

// Following returns the projected following list
func (s *FollowService) Following(ctx context.Context, userID primitive.ObjectID) ([]store.UserRef, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.UserRefsByIDs(ctx, u.Following)
}

// Stats returns follower and following counts
func (s *FollowService) Stats(ctx context.Context, userID primitive.ObjectID) (*FollowStats, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FollowStats{
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
	}, nil
}

// IsFollowing reports whether actor currently follows target
func (s *FollowService) IsFollowing(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	u, err := s.store.UserByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	for _, id := range u.Following {
		if id == targetID {
			return true, nil
		}
	}
	return false, nil
}

func now() time.Time {
	return time.Now().UTC()
}
