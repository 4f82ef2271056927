package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instagram-clone/backend/internal/chat"
	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/pkg/apperrors"
)

func (s *Server) handleListConversations(c *gin.Context) {
	views, err := s.conversations.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": views})
}

type createConversationRequest struct {
	Participants []string `json:"participants" binding:"required"`
	IsGroup      bool     `json:"isGroup"`
	GroupName    string   `json:"groupName"`
}

// handleCreateConversation creates a conversation with the caller as a
// participant. For groups the caller becomes the admin.
func (s *Server) handleCreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errValidation(err))
		return
	}

	actor := currentUser(c)
	participants := []primitive.ObjectID{actor}
	for _, raw := range req.Participants {
		id, ok := store.ParseID(raw)
		if !ok {
			s.respondError(c, apperrors.Validation("invalid participant id"))
			return
		}
		participants = append(participants, id)
	}

	params := chat.CreateParams{
		Participants: participants,
		IsGroup:      req.IsGroup,
		GroupName:    req.GroupName,
	}
	if req.IsGroup {
		params.GroupAdmin = actor
	}

	view, err := s.conversations.Create(c.Request.Context(), params)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type privateConversationRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (s *Server) handlePrivateConversation(c *gin.Context) {
	var req privateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errValidation(err))
		return
	}
	other, ok := store.ParseID(req.UserID)
	if !ok {
		s.respondError(c, apperrors.Validation("invalid user id"))
		return
	}

	view, err := s.conversations.GetOrCreatePrivate(c.Request.Context(), currentUser(c), other)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleGetMessages(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	views, err := s.messages.History(c.Request.Context(), id, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) handleSendMessage(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errValidation(err))
		return
	}

	view, err := s.messages.Send(c.Request.Context(), id, currentUser(c), req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}
