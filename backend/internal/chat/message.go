package chat

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
	"instagram-clone/backend/pkg/logger"
)

// MessageView is a message with its sender projected
type MessageView struct {
	ID           primitive.ObjectID `json:"id"`
	Conversation primitive.ObjectID `json:"conversation"`
	Sender       store.UserRef      `json:"sender"`
	Content      string             `json:"content"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func newMessageView(m *store.Message, sender store.UserRef) MessageView {
	return MessageView{
		ID:           m.ID,
		Conversation: m.Conversation,
		Sender:       sender,
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
	}
}

// MessageService appends messages to conversations
type MessageService struct {
	store  store.ConversationStore
	users  store.UserStore
	logger *zap.Logger
}

// NewMessageService creates a new message service
func NewMessageService(st store.ConversationStore, users store.UserStore) *MessageService {
	return &MessageService{store: st, users: users, logger: logger.Get()}
}

// Send appends a message to the conversation. The insert and the
// conversation's lastMessage update are one atomic unit in the store.
// Only participants may send.
func (s *MessageService) Send(ctx context.Context, conversationID, senderID primitive.ObjectID, content string) (*MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("message content is required")
	}

	conv, err := s.store.ConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !containsID(conv.Participants, senderID) {
		return nil, apperrors.Forbidden("sender is not a participant")
	}

	m := &store.Message{
		Conversation: conversationID,
		Sender:       senderID,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("Message sent",
		zap.String("message_id", m.ID.Hex()),
		zap.String("conversation_id", conversationID.Hex()),
	)

	refs, err := s.users.UserRefsByIDs(ctx, []primitive.ObjectID{senderID})
	if err != nil {
		return nil, err
	}
	var sender store.UserRef
	if len(refs) > 0 {
		sender = refs[0]
	}
	view := newMessageView(m, sender)
	return &view, nil
}

// History returns the conversation's messages, newest first, with senders
// projected. Only participants may read.
func (s *MessageService) History(ctx context.Context, conversationID, requesterID primitive.ObjectID) ([]MessageView, error) {
	conv, err := s.store.ConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !containsID(conv.Participants, requesterID) {
		return nil, apperrors.Forbidden("requester is not a participant")
	}

	msgs, err := s.store.MessagesByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]primitive.ObjectID, 0, len(msgs))
	seen := make(map[primitive.ObjectID]bool, len(msgs))
	for _, m := range msgs {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			senderIDs = append(senderIDs, m.Sender)
		}
	}
	refs, err := s.users.UserRefsByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]store.UserRef, len(refs))
	for _, r := range refs {
		byID[r.ID] = r
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		msg := m
		views = append(views, newMessageView(&msg, byID[m.Sender]))
	}
	return views, nil
}
