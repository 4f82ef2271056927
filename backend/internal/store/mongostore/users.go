package mongostore

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

// InsertUser stores a new account. Username and email uniqueness is
// enforced by the indexes; duplicates surface as Conflict.
func (s *Store) InsertUser(ctx context.Context, u *store.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	_, err := s.users().InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("username or email already taken")
	}
	return mapWriteErr(err, "user not found")
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*store.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*store.User, error) {
	var u store.User
	if err := s.users().FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapWriteErr(err, "user not found")
	}
	return &u, nil
}

// UpdateUser applies the non-nil fields and returns the updated account
func (s *Store) UpdateUser(ctx context.Context, id primitive.ObjectID, upd store.UserUpdate) (*store.User, error) {
	set := bson.M{}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Password != nil {
		set["password"] = *upd.Password
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if len(set) == 0 {
		return s.UserByID(ctx, id)
	}

	var u store.User
	err := s.users().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, mapWriteErr(err, "user not found")
	}
	return &u, nil
}

// SearchUsers matches username or email case-insensitively
func (s *Store) SearchUsers(ctx context.Context, query string) ([]store.UserRef, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	cursor, err := s.users().Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
		}},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "avatar": 1}),
	)
	if err != nil {
		return nil, apperrors.Internal("user search failed", err)
	}
	defer cursor.Close(ctx)

	var refs []store.UserRef
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, apperrors.Internal("user search decode failed", err)
	}
	return refs, nil
}

// UserRefsByIDs resolves ids to projections, preserving the order of ids
func (s *Store) UserRefsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]store.UserRef, error) {
	if len(ids) == 0 {
		return []store.UserRef{}, nil
	}
	cursor, err := s.users().Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "avatar": 1}),
	)
	if err != nil {
		return nil, apperrors.Internal("user lookup failed", err)
	}
	defer cursor.Close(ctx)

	var fetched []store.UserRef
	if err := cursor.All(ctx, &fetched); err != nil {
		return nil, apperrors.Internal("user lookup decode failed", err)
	}

	byID := make(map[primitive.ObjectID]store.UserRef, len(fetched))
	for _, ref := range fetched {
		byID[ref.ID] = ref
	}
	refs := make([]store.UserRef, 0, len(ids))
	for _, id := range ids {
		if ref, ok := byID[id]; ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// AddFollowEdge adds the dual edge in one transaction. The first update
// is conditioned on the edge being absent so a concurrent duplicate
// follow cannot slip in between check and write.
func (s *Store) AddFollowEdge(ctx context.Context, follower, followee primitive.ObjectID) error {
	return s.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		res, err := s.users().UpdateOne(sessCtx,
			bson.M{"_id": follower, "following": bson.M{"$ne": followee}},
			bson.M{"$addToSet": bson.M{"following": followee}},
		)
		if err != nil {
			return mapWriteErr(err, "user not found")
		}
		if res.MatchedCount == 0 {
			if _, err := s.UserByID(sessCtx, follower); err != nil {
				return err
			}
			return apperrors.Conflict("already following this user")
		}

		res, err = s.users().UpdateOne(sessCtx,
			bson.M{"_id": followee},
			bson.M{"$addToSet": bson.M{"followers": follower}},
		)
		if err != nil {
			return mapWriteErr(err, "user not found")
		}
		if res.MatchedCount == 0 {
			return apperrors.NotFound("user not found")
		}
		return nil
	})
}

// RemoveFollowEdge removes the dual edge in one transaction
func (s *Store) RemoveFollowEdge(ctx context.Context, follower, followee primitive.ObjectID) error {
	return s.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		res, err := s.users().UpdateOne(sessCtx,
			bson.M{"_id": follower, "following": followee},
			bson.M{"$pull": bson.M{"following": followee}},
		)
		if err != nil {
			return mapWriteErr(err, "user not found")
		}
		if res.MatchedCount == 0 {
			if _, err := s.UserByID(sessCtx, follower); err != nil {
				return err
			}
			return apperrors.Conflict("not following this user")
		}

		res, err = s.users().UpdateOne(sessCtx,
			bson.M{"_id": followee},
			bson.M{"$pull": bson.M{"followers": follower}},
		)
		if err != nil {
			return mapWriteErr(err, "user not found")
		}
		if res.MatchedCount == 0 {
			return apperrors.NotFound("user not found")
		}
		return nil
	})
}
