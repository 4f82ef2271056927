package memstore

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

func (s *Store) InsertConversation(ctx context.Context, c *store.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !c.IsGroup {
		if _, taken := s.pairKeys[c.PairKey]; taken {
			return apperrors.Conflict("private conversation already exists")
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.conversations[c.ID] = copyConversation(c)
	s.convSeq[c.ID] = s.nextSeq()
	if !c.IsGroup {
		s.pairKeys[c.PairKey] = c.ID
	}
	return nil
}

func (s *Store) ConversationByID(ctx context.Context, id primitive.ObjectID) (*store.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, apperrors.NotFound("conversation not found")
	}
	return copyConversation(c), nil
}

func (s *Store) PrivateConversation(ctx context.Context, a, b primitive.ObjectID) (*store.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.pairKeys[store.PrivatePairKey(a, b)]
	if !ok {
		return nil, apperrors.NotFound("conversation not found")
	}
	return copyConversation(s.conversations[id]), nil
}

func (s *Store) ConversationsByUser(ctx context.Context, userID primitive.ObjectID) ([]store.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := []store.Conversation{}
	for _, c := range s.conversations {
		if containsID(c.Participants, userID) {
			convs = append(convs, *copyConversation(c))
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		}
		return s.convSeq[convs[i].ID] > s.convSeq[convs[j].ID]
	})
	return convs, nil
}

func (s *Store) InsertMessage(ctx context.Context, m *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[m.Conversation]
	if !ok {
		return apperrors.NotFound("conversation not found")
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	mm := *m
	s.messages[m.ID] = &mm
	s.messageSeq[m.ID] = s.nextSeq()
	// Message insert and lastMessage update happen under the same lock hold
	c.LastMessage = m.ID
	c.UpdatedAt = m.CreatedAt
	return nil
}

func (s *Store) MessagesByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := []store.Message{}
	for _, m := range s.messages {
		if m.Conversation == conversationID {
			msgs = append(msgs, *m)
		}
	}
	// Newest first, insertion sequence breaking timestamp ties
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
		}
		return s.messageSeq[msgs[i].ID] > s.messageSeq[msgs[j].ID]
	})
	return msgs, nil
}

func (s *Store) MessagesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[primitive.ObjectID]store.Message, len(ids))
	for _, id := range ids {
		if m, ok := s.messages[id]; ok {
			out[id] = *m
		}
	}
	return out, nil
}
