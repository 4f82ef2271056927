// Package chat implements conversations and messages. Private (non-group)
// conversations are unique per unordered participant pair; the store's
// pair key closes the get-or-create race.
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

// ConversationView is a conversation with participants and the last
// message resolved.
type ConversationView struct {
	ID           primitive.ObjectID `json:"id"`
	Participants []store.UserRef    `json:"participants"`
	IsGroup      bool               `json:"isGroup"`
	GroupName    string             `json:"groupName,omitempty"`
	GroupAdmin   string             `json:"groupAdmin,omitempty"`
	LastMessage  *MessageView       `json:"lastMessage,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// ConversationService creates and lists conversations
type ConversationService struct {
	store  store.ConversationStore
	users  store.UserStore
	logger *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(st store.ConversationStore, users store.UserStore) *ConversationService {
	return &ConversationService{store: st, users: users, logger: logger.Get()}
}

// CreateParams describe a conversation to create
type CreateParams struct {
	Participants []primitive.ObjectID
	IsGroup      bool
	GroupName    string
	GroupAdmin   primitive.ObjectID
}

// Create stores a new conversation. Non-group conversations need exactly
// two distinct existing participants and are unique per pair: creating a
// second one for the same pair fails with Conflict. Group fields are only
// accepted for groups.
func (s *ConversationService) Create(ctx context.Context, p CreateParams) (*ConversationView, error) {
	participants := dedupeIDs(p.Participants)

	if p.IsGroup {
		if len(participants) < 2 {
			return nil, apperrors.Validation("a group needs at least two participants")
		}
		if strings.TrimSpace(p.GroupName) == "" {
			return nil, apperrors.Validation("group name is required")
		}
		if p.GroupAdmin.IsZero() || !containsID(participants, p.GroupAdmin) {
			return nil, apperrors.Validation("group admin must be a participant")
		}
	} else {
		if len(participants) != 2 {
			return nil, apperrors.Validation("a private conversation needs exactly two distinct participants")
		}
		if p.GroupName != "" || !p.GroupAdmin.IsZero() {
			return nil, apperrors.Validation("group fields are only allowed for groups")
		}
	}

	refs, err := s.users.UserRefsByIDs(ctx, participants)
	if err != nil {
		return nil, err
	}
	if len(refs) != len(participants) {
		return nil, apperrors.NotFound("participant not found")
	}

	nowT := time.Now().UTC()
	conv := &store.Conversation{
		Participants: participants,
		IsGroup:      p.IsGroup,
		CreatedAt:    nowT,
		UpdatedAt:    nowT,
	}
	if p.IsGroup {
		conv.GroupName = strings.TrimSpace(p.GroupName)
		conv.GroupAdmin = p.GroupAdmin
	} else {
		conv.PairKey = store.PrivatePairKey(participants[0], participants[1])
	}

	if err := s.store.InsertConversation(ctx, conv); err != nil {
		return nil, err
	}

	s.logger.Info("Conversation created",
		zap.String("conversation_id", conv.ID.Hex()),
		zap.Bool("is_group", conv.IsGroup),
	)
	view := s.toView(conv, refs, nil)
	return &view, nil
}

// GetOrCreatePrivate returns the private conversation for the pair,
// creating it if none exists. Two racing calls for the same pair converge
// on one conversation: the loser's insert fails on the pair key and is
// retried as a lookup.
func (s *ConversationService) GetOrCreatePrivate(ctx context.Context, userA, userB primitive.ObjectID) (*ConversationView, error) {
	if userA == userB {
		return nil, apperrors.Validation("a private conversation needs two distinct participants")
	}

	conv, err := s.store.PrivateConversation(ctx, userA, userB)
	switch {
	case err == nil:
		return s.resolve(ctx, conv)
	case !apperrors.IsKind(err, apperrors.KindNotFound):
		return nil, err
	}

	view, err := s.Create(ctx, CreateParams{Participants: []primitive.ObjectID{userA, userB}})
	if err == nil {
		return view, nil
	}
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		return nil, err
	}

	// Lost the race; the winner's conversation is there now
	conv, err = s.store.PrivateConversation(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, conv)
}

// List returns the user's conversations, newest updated first, with
// participants and last messages resolved in bulk.
func (s *ConversationService) List(ctx context.Context, userID primitive.ObjectID) ([]ConversationView, error) {
	convs, err := s.store.ConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var msgIDs []primitive.ObjectID
	var participantIDs []primitive.ObjectID
	seen := make(map[primitive.ObjectID]bool)
	for _, c := range convs {
		if !c.LastMessage.IsZero() {
			msgIDs = append(msgIDs, c.LastMessage)
		}
		for _, p := range c.Participants {
			if !seen[p] {
				seen[p] = true
				participantIDs = append(participantIDs, p)
			}
		}
	}

	msgs, err := s.store.MessagesByIDs(ctx, msgIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			participantIDs = append(participantIDs, m.Sender)
		}
	}

	refs, err := s.users.UserRefsByIDs(ctx, participantIDs)
	if err != nil {
		return nil, err
	}
	refByID := make(map[primitive.ObjectID]store.UserRef, len(refs))
	for _, r := range refs {
		refByID[r.ID] = r
	}

	views := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		convRefs := make([]store.UserRef, 0, len(c.Participants))
		for _, p := range c.Participants {
			if r, ok := refByID[p]; ok {
				convRefs = append(convRefs, r)
			}
		}
		var last *MessageView
		if m, ok := msgs[c.LastMessage]; ok {
			mv := newMessageView(&m, refByID[m.Sender])
			last = &mv
		}
		views = append(views, s.toView(&c, convRefs, last))
	}
	return views, nil
}

// resolve loads participant projections and the last message for one
// conversation.
func (s *ConversationService) resolve(ctx context.Context, conv *store.Conversation) (*ConversationView, error) {
	refs, err := s.users.UserRefsByIDs(ctx, conv.Participants)
	if err != nil {
		return nil, err
	}

	var last *MessageView
	if !conv.LastMessage.IsZero() {
		msgs, err := s.store.MessagesByIDs(ctx, []primitive.ObjectID{conv.LastMessage})
		if err != nil {
			return nil, err
		}
		if m, ok := msgs[conv.LastMessage]; ok {
			senders, err := s.users.UserRefsByIDs(ctx, []primitive.ObjectID{m.Sender})
			if err != nil {
				return nil, err
			}
			var sender store.UserRef
			if len(senders) > 0 {
				sender = senders[0]
			}
			mv := newMessageView(&m, sender)
			last = &mv
		}
	}

	view := s.toView(conv, refs, last)
	return &view, nil
}

func (s *ConversationService) toView(c *store.Conversation, participants []store.UserRef, last *MessageView) ConversationView {
	view := ConversationView{
		ID:           c.ID,
		Participants: participants,
		IsGroup:      c.IsGroup,
		GroupName:    c.GroupName,
		LastMessage:  last,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if !c.GroupAdmin.IsZero() {
		view.GroupAdmin = c.GroupAdmin.Hex()
	}
	return view
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !id.IsZero() && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
