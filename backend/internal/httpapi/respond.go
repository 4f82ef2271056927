package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

// respondError maps an error kind to a status code. Internal causes are
// logged and never echoed to the client.
func (s *Server) respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindUnauthenticated:
		status = http.StatusUnauthorized
	}

	if kind == apperrors.KindInternal {
		s.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	message := err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, gin.H{"error": message})
}

// errValidation wraps a request-binding failure as a validation error
func errValidation(err error) error {
	return apperrors.Validation(err.Error())
}

// pathID parses the :id route parameter; a malformed id aborts with 400
func (s *Server) pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := store.ParseID(c.Param("id"))
	if !ok {
		s.respondError(c, apperrors.Validation("invalid id"))
		return primitive.NilObjectID, false
	}
	return id, true
}
