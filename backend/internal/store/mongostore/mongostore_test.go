package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

// These tests need a running MongoDB replica set (transactions do not
// work against a standalone server). Set MONGO_TEST_URI to enable them.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database := fmt.Sprintf("instagram_test_%d", time.Now().UnixNano())
	st, err := New(ctx, uri, database)
	require.NoError(t, err)
	require.NoError(t, st.EnsureIndexes(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = st.db.Drop(ctx)
		_ = st.Close(ctx)
	})
	return st
}

func insertTestUser(t *testing.T, st *Store, username string) *store.User {
	t.Helper()
	u := &store.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
	}
	require.NoError(t, st.InsertUser(context.Background(), u))
	return u
}

func TestStore_FollowEdge(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, st, "alice")
	bob := insertTestUser(t, st, "bob")

	require.NoError(t, st.AddFollowEdge(ctx, alice.ID, bob.ID))

	// Both halves of the edge are visible after the transaction
	a, err := st.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, a.Following)
	b, err := st.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, b.Followers)

	err = st.AddFollowEdge(ctx, alice.ID, bob.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	require.NoError(t, st.RemoveFollowEdge(ctx, alice.ID, bob.ID))
	err = st.RemoveFollowEdge(ctx, alice.ID, bob.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestStore_ToggleLikeClampsAtZero(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, st, "alice")
	p := &store.Post{
		Image:     "uploads/pic.jpg",
		Author:    alice.ID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.InsertPost(ctx, p))

	liked, wasLiked, err := st.ToggleLike(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, wasLiked)
	assert.Equal(t, 1, liked.LikeCount)

	unliked, wasLiked, err := st.ToggleLike(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, wasLiked)
	assert.Equal(t, 0, unliked.LikeCount)

	// Unlike without a like leaves the counter at zero
	cleared, err := st.Unlike(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared.LikeCount)
	assert.Empty(t, cleared.Likes)
}

func TestStore_CommentCounterMovesWithCollection(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, st, "alice")
	p := &store.Post{
		Image:     "uploads/pic.jpg",
		Author:    alice.ID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.InsertPost(ctx, p))

	c := &store.Comment{
		Content:   "nice",
		Author:    alice.ID,
		Post:      p.ID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.InsertComment(ctx, c))

	stored, err := st.PostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)
	assert.Equal(t, []primitive.ObjectID{c.ID}, stored.Comments)

	_, err = st.DeleteComment(ctx, c.ID)
	require.NoError(t, err)

	stored, err = st.PostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentCount)
	assert.Empty(t, stored.Comments)
}

func TestStore_PrivatePairUnique(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, st, "alice")
	bob := insertTestUser(t, st, "bob")

	conv := &store.Conversation{
		Participants: []primitive.ObjectID{alice.ID, bob.ID},
		PairKey:      store.PrivatePairKey(alice.ID, bob.ID),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.InsertConversation(ctx, conv))

	dup := &store.Conversation{
		Participants: []primitive.ObjectID{bob.ID, alice.ID},
		PairKey:      store.PrivatePairKey(bob.ID, alice.ID),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	err := st.InsertConversation(ctx, dup)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	found, err := st.PrivateConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)
}

func TestStore_InsertMessageUpdatesConversation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := insertTestUser(t, st, "alice")
	bob := insertTestUser(t, st, "bob")

	conv := &store.Conversation{
		Participants: []primitive.ObjectID{alice.ID, bob.ID},
		PairKey:      store.PrivatePairKey(alice.ID, bob.ID),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.InsertConversation(ctx, conv))

	m := &store.Message{
		Conversation: conv.ID,
		Sender:       alice.ID,
		Content:      "hello",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, st.InsertMessage(ctx, m))

	stored, err := st.ConversationByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, stored.LastMessage)
	assert.True(t, stored.UpdatedAt.Equal(m.CreatedAt))
}
