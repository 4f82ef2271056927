package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instagram-clone/backend/internal/users"
)

func (s *Server) handleSearchUsers(c *gin.Context) {
	refs, err := s.users.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": refs})
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Avatar   *string `json:"avatar"`
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errValidation(err))
		return
	}

	u, err := s.users.Update(c.Request.Context(), currentUser(c), users.UpdateParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleFollow(c *gin.Context) {
	targetID, ok := s.pathID(c)
	if !ok {
		return
	}
	following, err := s.follow.Follow(c.Request.Context(), currentUser(c), targetID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

func (s *Server) handleUnfollow(c *gin.Context) {
	targetID, ok := s.pathID(c)
	if !ok {
		return
	}
	following, err := s.follow.Unfollow(c.Request.Context(), currentUser(c), targetID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

func (s *Server) handleFollowers(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	refs, err := s.follow.Followers(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": refs})
}

func (s *Server) handleFollowing(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	refs, err := s.follow.Following(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": refs})
}

func (s *Server) handleFollowStats(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	stats, err := s.follow.Stats(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleIsFollowing(c *gin.Context) {
	targetID, ok := s.pathID(c)
	if !ok {
		return
	}
	isFollowing, err := s.follow.IsFollowing(c.Request.Context(), currentUser(c), targetID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFollowing": isFollowing})
}
