package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"instagram-clone/backend/internal/store/memstore"
	"instagram-clone/backend/pkg/apperrors"
)

func TestService_Create(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateParams{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.False(t, u.ID.IsZero())
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)

	// The stored password is a hash of the input, never the input itself
	assert.NotEqual(t, "secret123", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	cases := []struct {
		name   string
		params CreateParams
	}{
		{"short username", CreateParams{Username: "ab", Email: "a@b.com", Password: "secret123"}},
		{"bad email", CreateParams{Username: "alice", Email: "not-an-email", Password: "secret123"}},
		{"short password", CreateParams{Username: "alice", Email: "a@b.com", Password: "123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.params)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestService_Create_Duplicate(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateParams{Username: "alice", Email: "other@example.com", Password: "secret123"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = svc.Create(ctx, CreateParams{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestService_Update_RehashesPassword(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateParams{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	newPassword := "newsecret"
	updated, err := svc.Update(ctx, u.ID, UpdateParams{Password: &newPassword})
	require.NoError(t, err)
	assert.Empty(t, updated.Password)

	stored, err := svc.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(newPassword)))
}

func TestService_Search(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateParams{Username: "bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	refs, err := svc.Search(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "alice", refs[0].Username)

	refs, err = svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
