package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

func (s *Store) InsertPost(ctx context.Context, p *store.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}
	_, err := s.posts().InsertOne(ctx, p)
	return mapWriteErr(err, "post not found")
}

func (s *Store) PostByID(ctx context.Context, id primitive.ObjectID) (*store.Post, error) {
	var p store.Post
	if err := s.posts().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapWriteErr(err, "post not found")
	}
	return &p, nil
}

func (s *Store) PostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]store.Post, error) {
	return s.findPosts(ctx, bson.M{"author": author})
}

func (s *Store) AllPosts(ctx context.Context) ([]store.Post, error) {
	return s.findPosts(ctx, bson.M{})
}

func (s *Store) findPosts(ctx context.Context, filter bson.M) ([]store.Post, error) {
	cursor, err := s.posts().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Internal("post query failed", err)
	}
	defer cursor.Close(ctx)

	var posts []store.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Internal("post decode failed", err)
	}
	if posts == nil {
		posts = []store.Post{}
	}
	return posts, nil
}

func (s *Store) UpdatePost(ctx context.Context, id primitive.ObjectID, upd store.PostUpdate) (*store.Post, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Caption != nil {
		set["caption"] = *upd.Caption
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}

	var p store.Post
	err := s.posts().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, mapWriteErr(err, "post not found")
	}
	return &p, nil
}

// DeletePost removes the post and its comments in one transaction
func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) (*store.Post, error) {
	var deleted store.Post
	err := s.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.posts().FindOneAndDelete(sessCtx, bson.M{"_id": id}).Decode(&deleted); err != nil {
			return mapWriteErr(err, "post not found")
		}
		if _, err := s.comments().DeleteMany(sessCtx, bson.M{"post": id}); err != nil {
			return mapWriteErr(err, "post not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// ToggleLike flips membership in the like set and adjusts likeCount in
// one pipeline update, so set and counter can never diverge. The
// decrement is clamped at zero.
func (s *Store) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*store.Post, bool, error) {
	isLiked := bson.M{"$in": bson.A{userID, "$likes"}}
	pipeline := bson.A{bson.M{"$set": bson.M{
		"likes": bson.M{"$cond": bson.A{
			isLiked,
			pullFromArray("$likes", userID),
			bson.M{"$concatArrays": bson.A{"$likes", bson.A{userID}}},
		}},
		"likeCount": bson.M{"$cond": bson.A{
			isLiked,
			clampedDecrement("$likeCount"),
			bson.M{"$add": bson.A{"$likeCount", 1}},
		}},
		"updatedAt": "$$NOW",
	}}}

	var p store.Post
	err := s.posts().FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, false, mapWriteErr(err, "post not found")
	}

	liked := false
	for _, id := range p.Likes {
		if id == userID {
			liked = true
			break
		}
	}
	return &p, liked, nil
}

// Unlike removes the like if present; a no-op when the user never liked
// the post. Same pipeline shape as ToggleLike's remove branch.
func (s *Store) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*store.Post, error) {
	isLiked := bson.M{"$in": bson.A{userID, "$likes"}}
	pipeline := bson.A{bson.M{"$set": bson.M{
		"likes": bson.M{"$cond": bson.A{
			isLiked,
			pullFromArray("$likes", userID),
			"$likes",
		}},
		"likeCount": bson.M{"$cond": bson.A{
			isLiked,
			clampedDecrement("$likeCount"),
			"$likeCount",
		}},
	}}}

	var p store.Post
	err := s.posts().FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, mapWriteErr(err, "post not found")
	}
	return &p, nil
}

// InsertComment stores the comment and updates the parent post's comment
// list and counter inside one transaction.
func (s *Store) InsertComment(ctx context.Context, c *store.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	return s.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.comments().InsertOne(sessCtx, c); err != nil {
			return mapWriteErr(err, "post not found")
		}
		res, err := s.posts().UpdateOne(sessCtx,
			bson.M{"_id": c.Post},
			bson.M{
				"$push": bson.M{"comments": c.ID},
				"$inc":  bson.M{"commentCount": 1},
				"$set":  bson.M{"updatedAt": time.Now().UTC()},
			},
		)
		if err != nil {
			return mapWriteErr(err, "post not found")
		}
		if res.MatchedCount == 0 {
			return apperrors.NotFound("post not found")
		}
		return nil
	})
}

// DeleteComment removes the comment and pulls it from the parent post in
// one transaction. The counter decrement is clamped at zero.
func (s *Store) DeleteComment(ctx context.Context, commentID primitive.ObjectID) (*store.Comment, error) {
	var deleted store.Comment
	err := s.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.comments().FindOneAndDelete(sessCtx, bson.M{"_id": commentID}).Decode(&deleted); err != nil {
			return mapWriteErr(err, "comment not found")
		}
		pipeline := bson.A{bson.M{"$set": bson.M{
			"comments":     pullFromArray("$comments", commentID),
			"commentCount": clampedDecrement("$commentCount"),
		}}}
		if _, err := s.posts().UpdateOne(sessCtx, bson.M{"_id": deleted.Post}, pipeline); err != nil {
			return mapWriteErr(err, "post not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (s *Store) CommentByID(ctx context.Context, id primitive.ObjectID) (*store.Comment, error) {
	var c store.Comment
	if err := s.comments().FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mapWriteErr(err, "comment not found")
	}
	return &c, nil
}

// CommentsByPost returns comments oldest first
func (s *Store) CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]store.Comment, error) {
	cursor, err := s.comments().Find(ctx,
		bson.M{"post": postID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, apperrors.Internal("comment query failed", err)
	}
	defer cursor.Close(ctx)

	var comments []store.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, apperrors.Internal("comment decode failed", err)
	}
	if comments == nil {
		comments = []store.Comment{}
	}
	return comments, nil
}

// pullFromArray is the pipeline expression removing id from the array field
func pullFromArray(field string, id primitive.ObjectID) bson.M {
	return bson.M{"$filter": bson.M{
		"input": field,
		"as":    "item",
		"cond":  bson.M{"$ne": bson.A{"$$item", id}},
	}}
}

// clampedDecrement is the pipeline expression for a floor-clamped counter
// decrement: even if a past partial failure left the counter at zero with
// the member still in the set, the counter never goes negative.
func clampedDecrement(field string) bson.M {
	return bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{field, 1}}}}
}
