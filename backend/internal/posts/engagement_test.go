package posts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/internal/store/memstore"
	"instagram-clone/backend/pkg/apperrors"
)

func seedUser(t *testing.T, st *memstore.Store, username string) *store.User {
	t.Helper()
	u := &store.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
	}
	require.NoError(t, st.InsertUser(context.Background(), u))
	return u
}

func seedPost(t *testing.T, st *memstore.Store, author primitive.ObjectID) *store.Post {
	t.Helper()
	p := &store.Post{
		Caption:   "hello",
		Image:     "uploads/pic.jpg",
		Author:    author,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.InsertPost(context.Background(), p))
	return p
}

func TestEngagement_ToggleLikeRoundTrip(t *testing.T) {
	st := memstore.New()
	svc := NewEngagementService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	post := seedPost(t, st, alice.ID)

	state, err := svc.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.LikeCount)

	state, err = svc.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.LikeCount)

	summary, err := svc.Likes(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Likes)
	assert.Equal(t, 0, summary.LikeCount)
}

func TestEngagement_ConcurrentLikersSumCorrectly(t *testing.T) {
	st := memstore.New()
	svc := NewEngagementService(st, st)
	ctx := context.Background()

	author := seedUser(t, st, "author")
	post := seedPost(t, st, author.ID)

	const likers = 16
	ids := make([]primitive.ObjectID, likers)
	for i := range ids {
		ids[i] = seedUser(t, st, fmt.Sprintf("liker%d", i)).ID
	}

	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := svc.ToggleLike(ctx, post.ID, id)
			return err
		})
	}
	require.NoError(t, g.Wait())

	summary, err := svc.Likes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, likers, summary.LikeCount)
	assert.Len(t, summary.Likes, likers)
}

func TestEngagement_UnlikeNeverGoesNegative(t *testing.T) {
	st := memstore.New()
	svc := NewEngagementService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	post := seedPost(t, st, alice.ID)

	for i := 0; i < 3; i++ {
		state, err := svc.Unlike(ctx, post.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, state.Liked)
		assert.Equal(t, 0, state.LikeCount)
	}
}

func TestEngagement_CommentCounterSymmetry(t *testing.T) {
	st := memstore.New()
	svc := NewEngagementService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	post := seedPost(t, st, alice.ID)

	c1, err := svc.AddComment(ctx, post.ID, alice.ID, "first")
	require.NoError(t, err)
	c2, err := svc.AddComment(ctx, post.ID, alice.ID, "second")
	require.NoError(t, err)

	stored, err := st.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CommentCount)
	assert.Len(t, stored.Comments, 2)

	// Oldest first
	comments, err := svc.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID)
	assert.Equal(t, c2.ID, comments[1].ID)

	require.NoError(t, svc.DeleteComment(ctx, c1.ID, alice.ID))

	stored, err = st.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)
	assert.Len(t, stored.Comments, 1)
}

func TestEngagement_DeleteCommentAuthorization(t *testing.T) {
	st := memstore.New()
	svc := NewEngagementService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	post := seedPost(t, st, alice.ID)

	c, err := svc.AddComment(ctx, post.ID, alice.ID, "mine")
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, c.ID, bob.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = svc.DeleteComment(ctx, primitive.NewObjectID(), bob.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// The failed attempts must not have touched the counter
	stored, err := st.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)
}

func TestEngagement_EmptyCommentRejected(t *testing.T) {
	st := memstore.New()
	svc := NewEngagementService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	post := seedPost(t, st, alice.ID)

	_, err := svc.AddComment(ctx, post.ID, alice.ID, "   ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
