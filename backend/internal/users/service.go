// Package users implements account management and the mutual follow
// graph. Follow state is denormalized onto both user records; every
// follow mutation writes both sides as one atomic unit.
package users

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
	"instagram-clone/backend/pkg/logger"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Service manages user accounts
type Service struct {
	store  store.UserStore
	logger *zap.Logger
}

// NewService creates a new account service
func NewService(st store.UserStore) *Service {
	return &Service{store: st, logger: logger.Get()}
}

// CreateParams are the fields for a new account
type CreateParams struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

// Create registers a new account with a hashed password. Duplicate
// username or email fails with Conflict.
func (s *Service) Create(ctx context.Context, p CreateParams) (*store.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if err := validateNewAccount(p); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	u := &store.User{
		Username:  p.Username,
		Email:     p.Email,
		Password:  string(hash),
		Avatar:    p.Avatar,
		CreatedAt: now(),
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username),
	)
	return u, nil
}

// ByID fetches an account
func (s *Service) ByID(ctx context.Context, id primitive.ObjectID) (*store.User, error) {
	return s.store.UserByID(ctx, id)
}

// ByEmail fetches an account by email
func (s *Service) ByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ByUsername fetches an account by username
func (s *Service) ByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.store.UserByUsername(ctx, strings.TrimSpace(username))
}

// UpdateParams are the mutable account fields; nil leaves a field unchanged
type UpdateParams struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *string
}

// Update applies the given fields. A new password is re-hashed before it
// is stored; the stored hash never leaves this package.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, p UpdateParams) (*store.User, error) {
	upd := store.UserUpdate{
		Username: p.Username,
		Email:    p.Email,
		Avatar:   p.Avatar,
	}
	if p.Password != nil {
		if len(*p.Password) < minPasswordLen {
			return nil, apperrors.Validation("password is too short")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
		hashed := string(hash)
		upd.Password = &hashed
	}
	u, err := s.store.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return u, nil
}

// Search matches username or email case-insensitively and returns
// projections only.
func (s *Service) Search(ctx context.Context, query string) ([]store.UserRef, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []store.UserRef{}, nil
	}
	return s.store.SearchUsers(ctx, query)
}

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

func validateNewAccount(p CreateParams) error {
	if len(p.Username) < minUsernameLen {
		return apperrors.Validation("username must be at least 3 characters")
	}
	if !emailPattern.MatchString(p.Email) {
		return apperrors.Validation("invalid email format")
	}
	if len(p.Password) < minPasswordLen {
		return apperrors.Validation("password must be at least 6 characters")
	}
	return nil
}
