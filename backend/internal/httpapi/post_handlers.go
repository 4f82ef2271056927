package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instagram-clone/backend/pkg/apperrors"
)

func (s *Server) handleListPosts(c *gin.Context) {
	views, err := s.posts.All(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": views})
}

// handleCreatePost accepts multipart form data: an "image" file and an
// optional "caption" field.
func (s *Server) handleCreatePost(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		s.respondError(c, apperrors.Validation("image file is required"))
		return
	}
	defer file.Close()

	ref, err := s.uploads.Save(header.Filename, file)
	if err != nil {
		s.respondError(c, err)
		return
	}

	view, err := s.posts.Create(c.Request.Context(), currentUser(c), c.PostForm("caption"), ref)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) handleGetPost(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	view, err := s.posts.ByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handlePostsByUser(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	views, err := s.posts.ByUser(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": views})
}

type updatePostRequest struct {
	Caption *string `json:"caption"`
	Image   *string `json:"image"`
}

func (s *Server) handleUpdatePost(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errValidation(err))
		return
	}

	view, err := s.posts.Update(c.Request.Context(), id, currentUser(c), req.Caption, req.Image)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDeletePost(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.posts.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleToggleLike(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	state, err := s.engagement.ToggleLike(c.Request.Context(), id, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleUnlike(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	state, err := s.engagement.Unlike(c.Request.Context(), id, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleGetLikes(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	summary, err := s.engagement.Likes(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type addCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) handleAddComment(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errValidation(err))
		return
	}

	view, err := s.engagement.AddComment(c.Request.Context(), id, currentUser(c), req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) handleGetComments(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	views, err := s.engagement.Comments(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": views})
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.engagement.DeleteComment(c.Request.Context(), id, currentUser(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
