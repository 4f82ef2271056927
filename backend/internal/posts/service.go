// Package posts implements posts and their engagement state (likes and
// comments). The denormalized likeCount/commentCount fields always move
// in the same atomic write as the sets they summarize.
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

// FileRemover releases a stored binary object by its reference. Failures
// are logged, not propagated: losing an orphaned file is preferable to
// failing the mutation that already committed.
type FileRemover interface {
	Delete(ref string) error
}

// View is a post with its author projected
type View struct {
	ID           primitive.ObjectID `json:"id"`
	Caption      string             `json:"caption,omitempty"`
	Image        string             `json:"image"`
	Author       store.UserRef      `json:"author"`
	LikeCount    int                `json:"likeCount"`
	CommentCount int                `json:"commentCount"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// Service manages post records
type Service struct {
	store  store.PostStore
	users  store.UserStore
	files  FileRemover
	logger *zap.Logger
}

// NewService creates a new post service
func NewService(st store.PostStore, users store.UserStore, files FileRemover) *Service {
	return &Service{store: st, users: users, files: files, logger: logger.Get()}
}

// Create stores a new post for the author
func (s *Service) Create(ctx context.Context, authorID primitive.ObjectID, caption, image string) (*View, error) {
	if strings.TrimSpace(image) == "" {
		return nil, apperrors.Validation("image is required")
	}
	p := &store.Post{
		Caption:   caption,
		Image:     image,
		Author:    authorID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertPost(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Post created",
		zap.String("post_id", p.ID.Hex()),
		zap.String("author", authorID.Hex()),
	)
	return s.project(ctx, p)
}

// All returns every post, newest first, with authors projected
func (s *Service) All(ctx context.Context) ([]View, error) {
	posts, err := s.store.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return s.projectAll(ctx, posts)
}

// ByID fetches one post with its author projected
func (s *Service) ByID(ctx context.Context, id primitive.ObjectID) (*View, error) {
	p, err := s.store.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, p)
}

// ByUser returns a user's posts, newest first
func (s *Service) ByUser(ctx context.Context, userID primitive.ObjectID) ([]View, error) {
	posts, err := s.store.PostsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.projectAll(ctx, posts)
}

// Update edits caption and/or image. Only the author may edit. Replacing
// the image releases the old file best-effort.
func (s *Service) Update(ctx context.Context, id, actorID primitive.ObjectID, caption, image *string) (*View, error) {
	p, err := s.store.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Author != actorID {
		return nil, apperrors.Forbidden("only the author can edit this post")
	}

	oldImage := p.Image
	updated, err := s.store.UpdatePost(ctx, id, store.PostUpdate{Caption: caption, Image: image})
	if err != nil {
		return nil, err
	}
	if image != nil && oldImage != "" && oldImage != *image {
		s.removeFile(oldImage)
	}
	return s.project(ctx, updated)
}

// Delete removes the post, its comments, and its stored image. Only the
// author may delete.
func (s *Service) Delete(ctx context.Context, id, actorID primitive.ObjectID) error {
	p, err := s.store.PostByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Author != actorID {
		return apperrors.Forbidden("only the author can delete this post")
	}

	deleted, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return err
	}
	if deleted.Image != "" {
		s.removeFile(deleted.Image)
	}
	s.logger.Info("Post deleted", zap.String("post_id", id.Hex()))
	return nil
}

func (s *Service) removeFile(ref string) {
	if s.files == nil {
		return
	}
	if err := s.files.Delete(ref); err != nil {
		s.logger.Warn("Failed to delete stored file",
			zap.String("ref", ref),
			zap.Error(err),
		)
	}
}

func (s *Service) project(ctx context.Context, p *store.Post) (*View, error) {
	views, err := s.projectAll(ctx, []store.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// projectAll batch-resolves authors instead of looking them up per post
func (s *Service) projectAll(ctx context.Context, posts []store.Post) ([]View, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	seen := make(map[primitive.ObjectID]bool, len(posts))
	for _, p := range posts {
		if !seen[p.Author] {
			seen[p.Author] = true
			authorIDs = append(authorIDs, p.Author)
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

	views := make([]View, 0, len(posts))
	for _, p := range posts {
		views = append(views, View{
			ID:           p.ID,
			Caption:      p.Caption,
			Image:        p.Image,
			Author:       byID[p.Author],
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
			CreatedAt:    p.CreatedAt,
		})
	}
	return views, nil
}
