package memstore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

func (s *Store) InsertUser(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return apperrors.Conflict("username or email already taken")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return copyUser(u), nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (s *Store) UpdateUser(ctx context.Context, id primitive.ObjectID, upd store.UserUpdate) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	return copyUser(u), nil
}

func (s *Store) SearchUsers(ctx context.Context, query string) ([]store.UserRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	refs := []store.UserRef{}
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			refs = append(refs, u.Ref())
		}
	}
	return refs, nil
}

func (s *Store) UserRefsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]store.UserRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := make([]store.UserRef, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			refs = append(refs, u.Ref())
		}
	}
	return refs, nil
}

func (s *Store) AddFollowEdge(ctx context.Context, follower, followee primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.users[follower]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	to, ok := s.users[followee]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	if containsID(from.Following, followee) {
		return apperrors.Conflict("already following this user")
	}
	// Both halves of the edge mutate under the same lock hold
	from.Following = append(from.Following, followee)
	to.Followers = append(to.Followers, follower)
	return nil
}

func (s *Store) RemoveFollowEdge(ctx context.Context, follower, followee primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.users[follower]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	to, ok := s.users[followee]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	if !containsID(from.Following, followee) {
		return apperrors.Conflict("not following this user")
	}
	from.Following = removeID(from.Following, followee)
	to.Followers = removeID(to.Followers, follower)
	return nil
}
