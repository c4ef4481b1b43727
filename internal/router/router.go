package router

import (
	"github.com/anonto42/blog/backend/internal/handlers"
	"github.com/anonto42/blog/backend/internal/middleware"
	"github.com/anonto42/blog/backend/internal/repositories"
	"github.com/anonto42/blog/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the routes are built from
type Dependencies struct {
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository
	Users    repositories.UserRepository

	// Auth guards the routes that need a caller identity
	Auth echo.MiddlewareFunc
	// FirebaseAuth enables /api/auth/firebase-login when set
	FirebaseAuth middleware.TokenVerifier

	JWTSecret        string
	EnforceOwnership bool
	Logger           *zap.SugaredLogger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	auth := deps.Auth
	if auth == nil {
		auth = middleware.JWTAuthMiddleware(deps.JWTSecret)
	}

	e.GET("/health", handlers.HealthCheck)

	postService := services.NewPostService(deps.Posts, deps.Comments, logger, services.Options{
		EnforceOwnership: deps.EnforceOwnership,
	})

	api := e.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.Users, deps.FirebaseAuth, deps.JWTSecret, logger)
	authHandler.RegisterAuthRoutes(api.Group("/auth"), auth)
	logger.Debug("Auth routes configured.")

	posts := api.Group("/posts")

	postHandler := handlers.NewPostHandler(postService, logger)
	postHandler.RegisterPostRoutes(posts, auth)
	logger.Debug("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(deps.Comments, postService, logger)
	commentHandler.RegisterCommentRoutes(posts, auth)
	logger.Debug("Comment routes configured.")

	logger.Info("All routes configured.")
}
