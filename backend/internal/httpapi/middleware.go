package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instagram-clone/backend/pkg/apperrors"
)

const ctxUserID = "userID"

// requireAuth verifies the bearer token and stores the caller's user id
// on the request context.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		s.respondError(c, apperrors.Unauthenticated("authorization header required"))
		c.Abort()
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	userID, err := s.auth.Verify(token)
	if err != nil {
		s.respondError(c, err)
		c.Abort()
		return
	}

	c.Set(ctxUserID, userID)
	c.Next()
}

// currentUser returns the authenticated user id set by requireAuth
func currentUser(c *gin.Context) primitive.ObjectID {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(primitive.ObjectID); ok {
			return id
		}
	}
	return primitive.NilObjectID
}
