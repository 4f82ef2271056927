package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

func (s *Store) InsertPost(ctx context.Context, p *store.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}
	s.posts[p.ID] = copyPost(p)
	return nil
}

func (s *Store) PostByID(ctx context.Context, id primitive.ObjectID) (*store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	return copyPost(p), nil
}

func (s *Store) PostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := []store.Post{}
	for _, p := range s.posts {
		if p.Author == author {
			posts = append(posts, *copyPost(p))
		}
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

func (s *Store) AllPosts(ctx context.Context) ([]store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]store.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, *copyPost(p))
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

func sortPostsNewestFirst(posts []store.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID.Hex() > posts[j].ID.Hex()
	})
}

func (s *Store) UpdatePost(ctx context.Context, id primitive.ObjectID, upd store.PostUpdate) (*store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	if upd.Caption != nil {
		p.Caption = *upd.Caption
	}
	if upd.Image != nil {
		p.Image = *upd.Image
	}
	p.UpdatedAt = time.Now().UTC()
	return copyPost(p), nil
}

func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) (*store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.Post == id {
			delete(s.comments, cid)
			delete(s.commentSeq, cid)
		}
	}
	return copyPost(p), nil
}

func (s *Store) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*store.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, false, apperrors.NotFound("post not found")
	}
	liked := false
	if containsID(p.Likes, userID) {
		p.Likes = removeID(p.Likes, userID)
		if p.LikeCount > 0 {
			p.LikeCount--
		}
	} else {
		p.Likes = append(p.Likes, userID)
		p.LikeCount++
		liked = true
	}
	p.UpdatedAt = time.Now().UTC()
	return copyPost(p), liked, nil
}

func (s *Store) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	if containsID(p.Likes, userID) {
		p.Likes = removeID(p.Likes, userID)
		if p.LikeCount > 0 {
			p.LikeCount--
		}
	}
	return copyPost(p), nil
}

func (s *Store) InsertComment(ctx context.Context, c *store.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[c.Post]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cc := *c
	s.comments[c.ID] = &cc
	s.commentSeq[c.ID] = s.nextSeq()
	p.Comments = append(p.Comments, c.ID)
	p.CommentCount++
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, commentID primitive.ObjectID) (*store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return nil, apperrors.NotFound("comment not found")
	}
	delete(s.comments, commentID)
	delete(s.commentSeq, commentID)
	if p, ok := s.posts[c.Post]; ok {
		p.Comments = removeID(p.Comments, commentID)
		if p.CommentCount > 0 {
			p.CommentCount--
		}
	}
	out := *c
	return &out, nil
}

func (s *Store) CommentByID(ctx context.Context, id primitive.ObjectID) (*store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, apperrors.NotFound("comment not found")
	}
	out := *c
	return &out, nil
}

func (s *Store) CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]store.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := []store.Comment{}
	for _, c := range s.comments {
		if c.Post == postID {
			comments = append(comments, *c)
		}
	}
	// Oldest first, by insertion sequence
	sort.Slice(comments, func(i, j int) bool {
		return s.commentSeq[comments[i].ID] < s.commentSeq[comments[j].ID]
	})
	return comments, nil
}
