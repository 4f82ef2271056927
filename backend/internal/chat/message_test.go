package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagram-clone/backend/internal/store/memstore"
	"instagram-clone/backend/pkg/apperrors"
)

func TestMessage_SendUpdatesLastMessage(t *testing.T) {
	st := memstore.New()
	convs := NewConversationService(st, st)
	msgs := NewMessageService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	conv, err := convs.GetOrCreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	sent, err := msgs.Send(ctx, conv.ID, alice.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", sent.Content)
	assert.Equal(t, alice.ID, sent.Sender.ID)

	stored, err := st.ConversationByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, sent.ID, stored.LastMessage)
	assert.Equal(t, sent.CreatedAt, stored.UpdatedAt)
}

func TestMessage_HistoryNewestFirst(t *testing.T) {
	st := memstore.New()
	convs := NewConversationService(st, st)
	msgs := NewMessageService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	conv, err := convs.GetOrCreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	first, err := msgs.Send(ctx, conv.ID, alice.ID, "first")
	require.NoError(t, err)
	second, err := msgs.Send(ctx, conv.ID, bob.ID, "second")
	require.NoError(t, err)

	history, err := msgs.History(ctx, conv.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
	assert.Equal(t, "bob", history[0].Sender.Username)
	assert.Equal(t, "alice", history[1].Sender.Username)
}

func TestMessage_ParticipantsOnly(t *testing.T) {
	st := memstore.New()
	convs := NewConversationService(st, st)
	msgs := NewMessageService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	eve := seedUser(t, st, "eve")

	conv, err := convs.GetOrCreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = msgs.Send(ctx, conv.ID, eve.ID, "let me in")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = msgs.History(ctx, conv.ID, eve.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestMessage_EmptyContentRejected(t *testing.T) {
	st := memstore.New()
	convs := NewConversationService(st, st)
	msgs := NewMessageService(st, st)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	conv, err := convs.GetOrCreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = msgs.Send(ctx, conv.ID, alice.ID, "  ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
