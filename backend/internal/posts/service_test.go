package posts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagram-clone/backend/internal/store/memstore"
	"instagram-clone/backend/pkg/apperrors"
)

// fakeRemover records deleted refs
type fakeRemover struct {
	deleted []string
}

func (f *fakeRemover) Delete(ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func TestService_CreateAndFetch(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")

	view, err := svc.Create(ctx, alice.ID, "sunset", "uploads/sunset.jpg")
	require.NoError(t, err)
	assert.Equal(t, "sunset", view.Caption)
	assert.Equal(t, alice.ID, view.Author.ID)
	assert.Equal(t, "alice", view.Author.Username)

	fetched, err := svc.ByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, fetched.ID)

	_, err = svc.Create(ctx, alice.ID, "no image", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestService_UpdateOnlyByAuthor(t *testing.T) {
	st := memstore.New()
	files := &fakeRemover{}
	svc := NewService(st, st, files)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	view, err := svc.Create(ctx, alice.ID, "old", "uploads/old.jpg")
	require.NoError(t, err)

	caption := "new"
	_, err = svc.Update(ctx, view.ID, bob.ID, &caption, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	image := "uploads/new.jpg"
	updated, err := svc.Update(ctx, view.ID, alice.ID, &caption, &image)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Caption)
	assert.Equal(t, "uploads/new.jpg", updated.Image)

	// Replacing the image releases the old file
	assert.Equal(t, []string{"uploads/old.jpg"}, files.deleted)
}

func TestService_DeleteCascadesAndRemovesImage(t *testing.T) {
	st := memstore.New()
	files := &fakeRemover{}
	svc := NewService(st, st, files)
	engagement := NewEngagementService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	view, err := svc.Create(ctx, alice.ID, "doomed", "uploads/doomed.jpg")
	require.NoError(t, err)
	c, err := engagement.AddComment(ctx, view.ID, alice.ID, "gone soon")
	require.NoError(t, err)

	err = svc.Delete(ctx, view.ID, bob.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	require.NoError(t, svc.Delete(ctx, view.ID, alice.ID))
	assert.Equal(t, []string{"uploads/doomed.jpg"}, files.deleted)

	_, err = svc.ByID(ctx, view.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = st.CommentByID(ctx, c.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestService_ListingsNewestFirst(t *testing.T) {
	st := memstore.New()
	svc := NewService(st, st, nil)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	first, err := svc.Create(ctx, alice.ID, "first", "uploads/1.jpg")
	require.NoError(t, err)
	second, err := svc.Create(ctx, bob.ID, "second", "uploads/2.jpg")
	require.NoError(t, err)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	mine, err := svc.ByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}
