package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The store interfaces expose domain-specific operations rather than raw
// document access so that every cross-entity write (follow edges, comment
// plus counter, message plus lastMessage) is atomic inside the
// implementation. Implementations report failures with apperrors kinds:
// NotFound for missing entities, Conflict for duplicate-key or
// already-in-state mutations, Internal for driver failures.

// UserUpdate carries the mutable account fields; nil means leave unchanged
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *string
}

// PostUpdate carries the mutable post fields; nil means leave unchanged
type PostUpdate struct {
	Caption *string
	Image   *string
}

// UserStore persists accounts and the mutual follow relation
type UserStore interface {
	InsertUser(ctx context.Context, u *User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*User, error)
	SearchUsers(ctx context.Context, query string) ([]UserRef, error)

	// UserRefsByIDs resolves ids to projections, preserving the order of
	// ids and dropping ids that no longer resolve.
	UserRefsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]UserRef, error)

	// AddFollowEdge atomically adds followee to follower.Following and
	// follower to followee.Followers. Conflict if the edge already exists.
	AddFollowEdge(ctx context.Context, follower, followee primitive.ObjectID) error

	// RemoveFollowEdge atomically removes both halves of the edge.
	// Conflict if the edge does not exist.
	RemoveFollowEdge(ctx context.Context, follower, followee primitive.ObjectID) error
}

// PostStore persists posts, likes and comments
type PostStore interface {
	InsertPost(ctx context.Context, p *Post) error
	PostByID(ctx context.Context, id primitive.ObjectID) (*Post, error)
	PostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]Post, error)
	AllPosts(ctx context.Context) ([]Post, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, upd PostUpdate) (*Post, error)

	// DeletePost removes the post and its comments, returning the deleted
	// post so the caller can release the stored image.
	DeletePost(ctx context.Context, id primitive.ObjectID) (*Post, error)

	// ToggleLike flips userID's membership in the like set and adjusts
	// likeCount in the same atomic write, clamped at zero. It returns the
	// post after the write and whether the user now likes it.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*Post, bool, error)

	// Unlike removes the like if present; it is a no-op otherwise. The
	// counter decrement is clamped at zero.
	Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*Post, error)

	// InsertComment stores the comment and, in the same atomic unit,
	// appends its id to the parent post and increments commentCount.
	InsertComment(ctx context.Context, c *Comment) error

	// DeleteComment removes the comment and, in the same atomic unit,
	// pulls its id from the parent post and decrements commentCount
	// (clamped at zero). It returns the deleted comment.
	DeleteComment(ctx context.Context, commentID primitive.ObjectID) (*Comment, error)

	CommentByID(ctx context.Context, id primitive.ObjectID) (*Comment, error)

	// CommentsByPost returns comments in creation order, oldest first
	CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]Comment, error)
}

// ConversationStore persists conversations and their messages
type ConversationStore interface {
	// InsertConversation stores the conversation. For non-group
	// conversations the PairKey must be set; Conflict if another
	// conversation already holds that key.
	InsertConversation(ctx context.Context, c *Conversation) error

	ConversationByID(ctx context.Context, id primitive.ObjectID) (*Conversation, error)

	// PrivateConversation finds the non-group conversation for the pair,
	// in either order. NotFound if none exists.
	PrivateConversation(ctx context.Context, a, b primitive.ObjectID) (*Conversation, error)

	// ConversationsByUser returns every conversation the user participates
	// in, most recently updated first.
	ConversationsByUser(ctx context.Context, userID primitive.ObjectID) ([]Conversation, error)

	// InsertMessage stores the message and, in the same atomic unit, sets
	// the conversation's lastMessage pointer and advances updatedAt.
	InsertMessage(ctx context.Context, m *Message) error

	// MessagesByConversation returns messages newest first
	MessagesByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]Message, error)

	// MessagesByIDs resolves message ids in bulk (lastMessage display)
	MessagesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Message, error)
}

// Store is the full persistence surface the server wires up
type Store interface {
	UserStore
	PostStore
	ConversationStore
	Close(ctx context.Context) error
}
