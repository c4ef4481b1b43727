package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/blog/backend/internal/middleware"
	"github.com/anonto42/blog/backend/internal/models"
	"github.com/anonto42/blog/backend/internal/repositories"
	"github.com/anonto42/blog/backend/internal/router"
	"github.com/anonto42/blog/backend/pkg/config"
	"github.com/anonto42/blog/backend/pkg/firebase"
	"github.com/anonto42/blog/backend/pkg/logger"
	"github.com/anonto42/blog/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync() // flushes buffer, if any
	sugar := zapLogger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := router.Dependencies{
		JWTSecret:        cfg.JWTSecret,
		EnforceOwnership: cfg.EnforceOwnership,
		Logger:           sugar,
	}

	switch cfg.Storage {
	case config.StorageMemory:
		sugar.Warn("Using in-memory storage, data is lost on restart")
		deps.Posts = repositories.NewMemoryPostRepository()
		deps.Comments = repositories.NewMemoryCommentRepository()
		deps.Users = repositories.NewMemoryUserRepository()
	case config.StorageMongo:
		db, err := config.InitDB(ctx, cfg, sugar)
		if err != nil {
			sugar.Fatalw("Failed to initialize databases", "error", err)
		}
		defer db.CloseDB() // Ensure database connections are closed when main exits

		if err := db.Postgres.AutoMigrate(&models.User{}, &models.Comment{}); err != nil {
			sugar.Fatalw("Failed to auto migrate models", "error", err)
		}
		sugar.Info("PostgreSQL auto-migrations completed.")

		postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := postRepo.EnsureIndexes(ctx); err != nil {
			sugar.Fatalw("Failed to create post indexes", "error", err)
		}
		deps.Posts = postRepo
		deps.Comments = repositories.NewPostgresCommentRepository(db.Postgres)
		deps.Users = repositories.NewPostgresUserRepository(db.Postgres)
	default:
		sugar.Fatalw("Unknown storage type", "storage", cfg.Storage)
	}

	switch cfg.AuthProvider {
	case config.AuthProviderFirebase:
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			sugar.Fatalw("Failed to initialize Firebase", "error", err)
		}
		sugar.Info("Firebase app and auth client initialized successfully!")
		deps.FirebaseAuth = firebaseApp.AuthClient
		deps.Auth = middleware.FirebaseAuthMiddleware(firebaseApp.AuthClient)
	case config.AuthProviderJWT:
		deps.Auth = middleware.JWTAuthMiddleware(cfg.JWTSecret)
	default:
		sugar.Fatalw("Unknown auth provider", "provider", cfg.AuthProvider)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, sugar)
	router.SetupRoutes(e, deps)

	go func() {
		sugar.Infow("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("Server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdown(e, cfg, sugar)
}

func shutdown(e *echo.Echo, cfg *config.Config, logger *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server")
	if err := e.Shutdown(ctx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
}
