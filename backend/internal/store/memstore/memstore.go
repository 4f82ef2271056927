// Package memstore implements the store interfaces in process memory. It
// mirrors the mongostore's observable semantics (atomic dual-writes,
// clamped counters, private-pair uniqueness) under a single mutex, and
// backs the service tests and the memory dev backend.
package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"instagram-clone/backend/internal/store"
)

// Store implements store.Store with in-memory maps
type Store struct {
	mu sync.Mutex

	users         map[primitive.ObjectID]*store.User
	posts         map[primitive.ObjectID]*store.Post
	comments      map[primitive.ObjectID]*store.Comment
	conversations map[primitive.ObjectID]*store.Conversation
	messages      map[primitive.ObjectID]*store.Message

	// pairKeys is the in-memory equivalent of the unique partial index on
	// non-group conversations.
	pairKeys map[string]primitive.ObjectID

	// insertion sequence numbers keep orderings stable when timestamps tie
	commentSeq map[primitive.ObjectID]int
	messageSeq map[primitive.ObjectID]int
	convSeq    map[primitive.ObjectID]int
	seq        int
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]*store.User),
		posts:         make(map[primitive.ObjectID]*store.Post),
		comments:      make(map[primitive.ObjectID]*store.Comment),
		conversations: make(map[primitive.ObjectID]*store.Conversation),
		messages:      make(map[primitive.ObjectID]*store.Message),
		pairKeys:      make(map[string]primitive.ObjectID),
		commentSeq:    make(map[primitive.ObjectID]int),
		messageSeq:    make(map[primitive.ObjectID]int),
		convSeq:       make(map[primitive.ObjectID]int),
	}
}

// Close implements store.Store
func (s *Store) Close(ctx context.Context) error {
	return nil
}

func (s *Store) nextSeq() int {
	s.seq++
	return s.seq
}

func copyIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func copyUser(u *store.User) *store.User {
	c := *u
	c.Followers = copyIDs(u.Followers)
	c.Following = copyIDs(u.Following)
	return &c
}

func copyPost(p *store.Post) *store.Post {
	c := *p
	c.Likes = copyIDs(p.Likes)
	c.Comments = copyIDs(p.Comments)
	return &c
}

func copyConversation(c *store.Conversation) *store.Conversation {
	out := *c
	out.Participants = copyIDs(c.Participants)
	return &out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
