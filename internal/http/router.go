package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookverse/bookverse/internal/auth"
	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/demo"
)

// RouterConfig carries all router dependencies, improving testability and
// reducing parameter count.
type RouterConfig struct {
	DB             *gorm.DB
	Version        string
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool
	AuthAuditor    auth.AuthAuditor
	DeleteAuditor  DeleteAuditor
	Demo           *demo.Middleware

	Books   *BooksController
	Shelves *ShelvesController
	Feed    *FeedController
	Quotes  *QuotesController
	Reviews *ReviewsController
	Users   *UsersController
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Demo mode blocks writes before any other processing
	if cfg.Demo != nil {
		router.Use(cfg.Demo.Handler())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Auth endpoints
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		if cfg.AuthAuditor != nil {
			authController.SetAuditor(cfg.AuthAuditor)
		}
		authController.RegisterRoutes(router)
	}

	// Destructive operations feed the audit trail when it is enabled
	if cfg.DeleteAuditor != nil {
		cfg.Books.SetAuditor(cfg.DeleteAuditor)
		cfg.Shelves.SetAuditor(cfg.DeleteAuditor)
		cfg.Quotes.SetAuditor(cfg.DeleteAuditor)
		cfg.Reviews.SetAuditor(cfg.DeleteAuditor)
	}

	// Health endpoints
	health := NewHealthController(cfg.DB, cfg.Version)
	router.GET("/health", health.Health)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Book catalog
	api.GET("/books", cfg.Books.ListBooks)
	api.POST("/books", cfg.Books.CreateBook)
	api.GET("/books/:id", cfg.Books.GetBook)
	api.GET("/books/:id/cover", cfg.Books.GetBookCover)
	api.DELETE("/books/:id", cfg.Books.DeleteBook)

	// Shelf status and progress
	api.POST("/books/:id/status", cfg.Shelves.SetBookStatus)
	api.GET("/books/:id/status", cfg.Shelves.GetBookStatus)
	api.PUT("/books/:id/progress", cfg.Shelves.UpdateProgress)

	// Reviews
	api.POST("/books/:id/reviews", cfg.Reviews.CreateReview)
	api.GET("/books/:id/reviews", cfg.Reviews.ListReviews)
	api.PUT("/reviews/:id", cfg.Reviews.UpdateReview)
	api.DELETE("/reviews/:id", cfg.Reviews.DeleteReview)

	// Shelves
	api.GET("/shelves", cfg.Shelves.ListShelves)
	api.POST("/shelves", cfg.Shelves.CreateShelf)
	api.PUT("/shelves/:id", cfg.Shelves.RenameShelf)
	api.DELETE("/shelves/:id", cfg.Shelves.DeleteShelf)
	api.POST("/shelves/:id/books", cfg.Shelves.AddBook)
	api.DELETE("/shelves/:id/books/:bookId", cfg.Shelves.RemoveBook)

	// Quotes
	api.POST("/quotes", cfg.Quotes.CreateQuote)
	api.GET("/quotes", cfg.Quotes.ListQuotes)
	api.DELETE("/quotes/:id", cfg.Quotes.DeleteQuote)
	api.POST("/quotes/:id/like", cfg.Quotes.LikeQuote)
	api.DELETE("/quotes/:id/like", cfg.Quotes.UnlikeQuote)

	// Users and follows
	api.GET("/users/:id", cfg.Users.GetUser)
	api.POST("/users/:id/follow", cfg.Users.Follow)
	api.DELETE("/users/:id/follow", cfg.Users.Unfollow)
	api.GET("/users/:id/followers", cfg.Users.ListFollowers)
	api.GET("/users/:id/following", cfg.Users.ListFollowing)

	// Feed
	api.GET("/feed", cfg.Feed.GetFeed)

	return router
}
