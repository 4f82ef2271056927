package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagram-clone/backend/internal/store/memstore"
	"instagram-clone/backend/internal/users"
	"instagram-clone/backend/pkg/apperrors"
)

func newTestService(t *testing.T, expiry time.Duration) *Service {
	t.Helper()
	usersSvc := users.NewService(memstore.New())
	return NewService(usersSvc, []byte("test-secret"), expiry)
}

func TestService_SignupLoginVerify(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := svc.Signup(ctx, users.CreateParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)

	userID, err := svc.Verify(token.AccessToken)
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Empty(t, profile.Password)

	login, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	loginID, err := svc.Verify(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, loginID)
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Signup(ctx, users.CreateParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// Wrong password and unknown email fail identically
	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestService_VerifyRejectsBadTokens(t *testing.T) {
	svc := newTestService(t, time.Hour)

	_, err := svc.Verify("not-a-token")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	// Token signed with a different secret
	other := NewService(users.NewService(memstore.New()), []byte("other-secret"), time.Hour)
	token, err := other.Signup(context.Background(), users.CreateParams{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Verify(token.AccessToken)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestService_VerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t, -time.Minute)

	token, err := svc.Signup(context.Background(), users.CreateParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Verify(token.AccessToken)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}
