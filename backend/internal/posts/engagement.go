package posts

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

// LikeSummary is the like state of a post with likers projected
type LikeSummary struct {
	Likes     []store.UserRef `json:"likes"`
	LikeCount int             `json:"likeCount"`
}

// LikeState is the result of a like mutation for the acting user
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// CommentView is a comment with its author projected
type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	Content   string             `json:"content"`
	Author    store.UserRef      `json:"author"`
	Post      primitive.ObjectID `json:"post"`
	CreatedAt time.Time          `json:"createdAt"`
}

// EngagementService maintains like sets and comment lists together with
// their denormalized counters.
type EngagementService struct {
	store  store.PostStore
	users  store.UserStore
	logger *zap.Logger
}

// NewEngagementService creates a new engagement service
func NewEngagementService(st store.PostStore, users store.UserStore) *EngagementService {
	return &EngagementService{store: st, users: users, logger: logger.Get()}
}

// ToggleLike flips the acting user's like on the post. The set update and
// the counter adjustment are one atomic write in the store.
func (s *EngagementService) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*LikeState, error) {
	p, liked, err := s.store.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikeCount: p.LikeCount}, nil
}

// Unlike removes the like if present. Idempotent: unliking a post the
// user never liked succeeds and leaves the counter untouched.
func (s *EngagementService) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*LikeState, error) {
	p, err := s.store.Unlike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: false, LikeCount: p.LikeCount}, nil
}

// Likes returns the post's like state with likers projected
func (s *EngagementService) Likes(ctx context.Context, postID primitive.ObjectID) (*LikeSummary, error) {
	p, err := s.store.PostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	refs, err := s.users.UserRefsByIDs(ctx, p.Likes)
	if err != nil {
		return nil, err
	}
	return &LikeSummary{Likes: refs, LikeCount: p.LikeCount}, nil
}

// AddComment creates a comment on the post. Comment creation and the
// post's list/counter update are one atomic unit in the store.
func (s *EngagementService) AddComment(ctx context.Context, postID, authorID primitive.ObjectID, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("comment content is required")
	}

	c := &store.Comment{
		Content:   content,
		Author:    authorID,
		Post:      postID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Comment added",
		zap.String("comment_id", c.ID.Hex()),
		zap.String("post_id", postID.Hex()),
	)
	return s.projectComment(ctx, c)
}

// DeleteComment removes the acting user's comment. A missing comment is
// NotFound; someone else's comment is Forbidden.
func (s *EngagementService) DeleteComment(ctx context.Context, commentID, actorID primitive.ObjectID) error {
	c, err := s.store.CommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.Author != actorID {
		return apperrors.Forbidden("only the author can delete this comment")
	}
	if _, err := s.store.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("Comment deleted", zap.String("comment_id", commentID.Hex()))
	return nil
}

// Comments returns the post's comments, oldest first, authors projected
func (s *EngagementService) Comments(ctx context.Context, postID primitive.ObjectID) ([]CommentView, error) {
	comments, err := s.store.CommentsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	seen := make(map[primitive.ObjectID]bool, len(comments))
	for _, c := range comments {
		if !seen[c.Author] {
			seen[c.Author] = true
			authorIDs = append(authorIDs, c.Author)
		}
	}
	refs, err := s.users.UserRefsByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]store.UserRef, len(refs))
	for _, r := range refs {
		byID[r.ID] = r
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:        c.ID,
			Content:   c.Content,
			Author:    byID[c.Author],
			Post:      c.Post,
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

func (s *EngagementService) projectComment(ctx context.Context, c *store.Comment) (*CommentView, error) {
	refs, err := s.users.UserRefsByIDs(ctx, []primitive.ObjectID{c.Author})
	if err != nil {
		return nil, err
	}
	view := &CommentView{
		ID:        c.ID,
		Content:   c.Content,
		Post:      c.Post,
		CreatedAt: c.CreatedAt,
	}
	if len(refs) > 0 {
		view.Author = refs[0]
	}
	return view, nil
}
