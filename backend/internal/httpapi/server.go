// Package httpapi is the request layer: it authenticates callers, maps
// routes onto the domain services, and translates error kinds into HTTP
// statuses. No business rules live here.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instagram-clone/backend/internal/auth"
	"instagram-clone/backend/internal/chat"
	"instagram-clone/backend/internal/posts"
	"instagram-clone/backend/internal/upload"
	"instagram-clone/backend/internal/users"
	"instagram-clone/backend/pkg/config"
	"instagram-clone/backend/pkg/logger"
)

// Server bundles the services behind the HTTP routes
type Server struct {
	cfg           *config.Config
	auth          *auth.Service
	users         *users.Service
	follow        *users.FollowService
	posts         *posts.Service
	engagement    *posts.EngagementService
	conversations *chat.ConversationService
	messages      *chat.MessageService
	uploads       *upload.Service
	limiter       *RateLimiter
	logger        *zap.Logger
}

// Deps are the collaborators the server routes to
type Deps struct {
	Config        *config.Config
	Auth          *auth.Service
	Users         *users.Service
	Follow        *users.FollowService
	Posts         *posts.Service
	Engagement    *posts.EngagementService
	Conversations *chat.ConversationService
	Messages      *chat.MessageService
	Uploads       *upload.Service
	Limiter       *RateLimiter
}

// NewServer creates the HTTP server wiring
func NewServer(d Deps) *Server {
	return &Server{
		cfg:           d.Config,
		auth:          d.Auth,
		users:         d.Users,
		follow:        d.Follow,
		posts:         d.Posts,
		engagement:    d.Engagement,
		conversations: d.Conversations,
		messages:      d.Messages,
		uploads:       d.Uploads,
		limiter:       d.Limiter,
		logger:        logger.Get(),
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	if s.limiter != nil {
		router.Use(s.rateLimitMiddleware())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.uploads != nil {
		router.Static("/uploads", s.uploads.Dir())
	}

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", s.handleSignup)
			authGroup.POST("/login", s.handleLogin)
			authGroup.GET("/profile", s.requireAuth, s.handleProfile)
		}

		usersGroup := api.Group("/users")
		{
			usersGroup.GET("/search", s.handleSearchUsers)
			usersGroup.PUT("/me", s.requireAuth, s.handleUpdateProfile)
			usersGroup.GET("/:id/followers", s.handleFollowers)
			usersGroup.GET("/:id/following", s.handleFollowing)
			usersGroup.GET("/:id/follow-stats", s.handleFollowStats)
			usersGroup.GET("/:id/is-following", s.requireAuth, s.handleIsFollowing)
			usersGroup.POST("/:id/follow", s.requireAuth, s.handleFollow)
			usersGroup.DELETE("/:id/follow", s.requireAuth, s.handleUnfollow)
			usersGroup.GET("/:id/posts", s.handlePostsByUser)
		}

		postsGroup := api.Group("/posts")
		{
			postsGroup.GET("", s.handleListPosts)
			postsGroup.POST("", s.requireAuth, s.handleCreatePost)
			postsGroup.GET("/:id", s.handleGetPost)
			postsGroup.PUT("/:id", s.requireAuth, s.handleUpdatePost)
			postsGroup.DELETE("/:id", s.requireAuth, s.handleDeletePost)
			postsGroup.POST("/:id/like", s.requireAuth, s.handleToggleLike)
			postsGroup.DELETE("/:id/like", s.requireAuth, s.handleUnlike)
			postsGroup.GET("/:id/likes", s.handleGetLikes)
			postsGroup.POST("/:id/comments", s.requireAuth, s.handleAddComment)
			postsGroup.GET("/:id/comments", s.handleGetComments)
		}
		api.DELETE("/comments/:id", s.requireAuth, s.handleDeleteComment)

		chatGroup := api.Group("/chat", s.requireAuth)
		{
			chatGroup.GET("/conversations", s.handleListConversations)
			chatGroup.POST("/conversations", s.handleCreateConversation)
			chatGroup.POST("/conversations/private", s.handlePrivateConversation)
			chatGroup.GET("/conversations/:id/messages", s.handleGetMessages)
			chatGroup.POST("/conversations/:id/messages", s.handleSendMessage)
		}
	}

	return router
}

// ginLogger logs each request with zap
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
