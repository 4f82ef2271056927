package store

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a stored account. Followers/Following hold the mutual follow
// relation: B is in A.Following exactly when A is in B.Followers.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username  string               `bson:"username" json:"username"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Avatar    string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// UserRef is the projection of a user used inside responses
type UserRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// Ref projects the user to its response shape
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// Post is a stored post. LikeCount and CommentCount are denormalized and
// must always equal the sizes of Likes and Comments.
type Post struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Caption      string               `bson:"caption,omitempty" json:"caption,omitempty"`
	Image        string               `bson:"image" json:"image"`
	Author       primitive.ObjectID   `bson:"author" json:"author"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	LikeCount    int                  `bson:"likeCount" json:"likeCount"`
	Comments     []primitive.ObjectID `bson:"comments" json:"comments"`
	CommentCount int                  `bson:"commentCount" json:"commentCount"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Comment lives only through the engagement operations: created together
// with the parent post's list/counter update, deleted the same way.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Conversation is a chat between two or more users. Non-group
// conversations have exactly two participants and carry PairKey, the
// uniqueness key for private-conversation dedup.
type Conversation struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	IsGroup      bool                 `bson:"isGroup" json:"isGroup"`
	GroupName    string               `bson:"groupName,omitempty" json:"groupName,omitempty"`
	GroupAdmin   primitive.ObjectID   `bson:"groupAdmin,omitempty" json:"groupAdmin,omitempty"`
	PairKey      string               `bson:"pairKey,omitempty" json:"-"`
	LastMessage  primitive.ObjectID   `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Message is append-only; it is never mutated or deleted
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Conversation primitive.ObjectID `bson:"conversation" json:"conversation"`
	Sender       primitive.ObjectID `bson:"sender" json:"sender"`
	Content      string             `bson:"content" json:"content"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// PrivatePairKey builds the uniqueness key for a non-group conversation:
// the two participant ids in sorted hex order. Both argument orders
// produce the same key.
func PrivatePairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah > bh {
		ah, bh = bh, ah
	}
	return ah + ":" + bh
}

// ParseID parses a client-supplied hex id
func ParseID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	return id, err == nil
}
