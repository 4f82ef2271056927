// Package auth issues and verifies caller identities. Credentials are
// bcrypt-hashed by the users service; this package only compares and
// mints HS256 tokens whose subject is the user id.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/internal/users"
	"instagram-clone/backend/pkg/apperrors"
	"instagram-clone/backend/pkg/logger"
)

// Service handles signup, login and token verification
type Service struct {
	users  *users.Service
	secret []byte
	expiry time.Duration
	logger *zap.Logger
}

// NewService creates a new auth service
func NewService(usersSvc *users.Service, secret []byte, expiry time.Duration) *Service {
	return &Service{
		users:  usersSvc,
		secret: secret,
		expiry: expiry,
		logger: logger.Get(),
	}
}

// Token is an issued access token
type Token struct {
	AccessToken string `json:"access_token"`
}

// Signup registers a new account and logs it in
func (s *Service) Signup(ctx context.Context, p users.CreateParams) (*Token, error) {
	u, err := s.users.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login verifies the credentials and issues a token. Both an unknown
// email and a wrong password fail with Unauthenticated, so the response
// does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthenticated("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, apperrors.Unauthenticated("invalid credentials")
	}

	s.logger.Info("User logged in", zap.String("user_id", u.ID.Hex()))
	return s.issue(u)
}

// Profile returns the account for an authenticated user, without the
// password hash.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (*store.User, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return u, nil
}

func (s *Service) issue(u *store.User) (*Token, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token", err)
	}
	return &Token{AccessToken: signed}, nil
}

// Verify parses the token and returns the authenticated user id
func (s *Service) Verify(token string) (primitive.ObjectID, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	claims := jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, apperrors.Unauthenticated("token expired")
		}
		return primitive.NilObjectID, apperrors.Unauthenticated("invalid token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return primitive.NilObjectID, apperrors.Unauthenticated("invalid token")
	}
	id, ok := store.ParseID(claims.Subject)
	if !ok {
		return primitive.NilObjectID, apperrors.Unauthenticated("invalid token subject")
	}
	return id, nil
}
