// Package mongostore implements the store interfaces on MongoDB. Every
// cross-document write runs inside a session transaction; single-document
// counter updates use aggregation-pipeline updates so the set mutation
// and the counter adjustment are one atomic write.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"instagram-clone/backend/pkg/apperrors"
	"instagram-clone/backend/pkg/logger"
)

// Store implements store.Store on a MongoDB database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// New connects to MongoDB and verifies the connection
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &Store{
		client: client,
		db:     client.Database(database),
		logger: logger.Get(),
	}, nil
}

// Close disconnects the underlying client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) users() *mongo.Collection         { return s.db.Collection("users") }
func (s *Store) posts() *mongo.Collection         { return s.db.Collection("posts") }
func (s *Store) comments() *mongo.Collection      { return s.db.Collection("comments") }
func (s *Store) conversations() *mongo.Collection { return s.db.Collection("conversations") }
func (s *Store) messages() *mongo.Collection      { return s.db.Collection("messages") }

// EnsureIndexes creates the indexes the consistency rules depend on. The
// partial unique index on pairKey is what closes the get-or-create race
// for private conversations: the losing insert fails with a duplicate key.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}

	if _, err := s.users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("username"),
		unique("email"),
	}); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	if _, err := s.conversations().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isGroup": false}),
		},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}

	if _, err := s.comments().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create comment index: %w", err)
	}

	if _, err := s.messages().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("failed to create message index: %w", err)
	}

	return nil
}

// withTx runs fn inside a session transaction. Requires the deployment to
// be a replica set (standalone MongoDB does not support transactions).
func (s *Store) withTx(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return apperrors.Internal("failed to start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := fn(sessCtx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// mapWriteErr converts driver errors into application error kinds
func mapWriteErr(err error, notFoundMsg string) error {
	var appErr *apperrors.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.NotFound(notFoundMsg)
	case mongo.IsDuplicateKeyError(err):
		return apperrors.Conflict("duplicate key")
	case errors.As(err, &appErr):
		return err
	default:
		return apperrors.Internal("storage operation failed", err)
	}
}
