package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

// InsertConversation stores the conversation. The unique partial index on
// pairKey turns a concurrent duplicate private creation into a Conflict.
func (s *Store) InsertConversation(ctx context.Context, c *store.Conversation) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.conversations().InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("private conversation already exists")
	}
	return mapWriteErr(err, "conversation not found")
}

func (s *Store) ConversationByID(ctx context.Context, id primitive.ObjectID) (*store.Conversation, error) {
	var c store.Conversation
	if err := s.conversations().FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mapWriteErr(err, "conversation not found")
	}
	return &c, nil
}

// PrivateConversation looks up the non-group conversation for the pair
// via its pairKey, so either argument order finds the same record.
func (s *Store) PrivateConversation(ctx context.Context, a, b primitive.ObjectID) (*store.Conversation, error) {
	var c store.Conversation
	err := s.conversations().FindOne(ctx, bson.M{
		"isGroup": false,
		"pairKey": store.PrivatePairKey(a, b),
	}).Decode(&c)
	if err != nil {
		return nil, mapWriteErr(err, "conversation not found")
	}
	return &c, nil
}

// ConversationsByUser returns the user's conversations, newest updated first
func (s *Store) ConversationsByUser(ctx context.Context, userID primitive.ObjectID) ([]store.Conversation, error) {
	cursor, err := s.conversations().Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}),
	)
	if err != nil {
		return nil, apperrors.Internal("conversation query failed", err)
	}
	defer cursor.Close(ctx)

	var convs []store.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, apperrors.Internal("conversation decode failed", err)
	}
	if convs == nil {
		convs = []store.Conversation{}
	}
	return convs, nil
}

// InsertMessage stores the message and advances the conversation's
// lastMessage pointer and updatedAt inside one transaction, so a reader
// can never observe the message without the conversation referencing it.
func (s *Store) InsertMessage(ctx context.Context, m *store.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	return s.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.messages().InsertOne(sessCtx, m); err != nil {
			return mapWriteErr(err, "conversation not found")
		}
		res, err := s.conversations().UpdateOne(sessCtx,
			bson.M{"_id": m.Conversation},
			bson.M{"$set": bson.M{
				"lastMessage": m.ID,
				"updatedAt":   m.CreatedAt,
			}},
		)
		if err != nil {
			return mapWriteErr(err, "conversation not found")
		}
		if res.MatchedCount == 0 {
			return apperrors.NotFound("conversation not found")
		}
		return nil
	})
}

// MessagesByConversation returns messages newest first
func (s *Store) MessagesByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]store.Message, error) {
	cursor, err := s.messages().Find(ctx,
		bson.M{"conversation": conversationID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, apperrors.Internal("message query failed", err)
	}
	defer cursor.Close(ctx)

	var msgs []store.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, apperrors.Internal("message decode failed", err)
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	return msgs, nil
}

// MessagesByIDs resolves message ids in bulk
func (s *Store) MessagesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]store.Message, error) {
	out := make(map[primitive.ObjectID]store.Message, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.messages().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperrors.Internal("message lookup failed", err)
	}
	defer cursor.Close(ctx)

	var msgs []store.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, apperrors.Internal("message lookup decode failed", err)
	}
	for _, m := range msgs {
		out[m.ID] = m
	}
	return out, nil
}
