package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/circleup/backend/internal/handlers"
	"github.com/anonto42/circleup/backend/internal/media"
	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/anonto42/circleup/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil when Firebase is not configured.
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, log *logrus.Logger) error {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.Account{},
		&models.FriendRequest{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}
	log.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	mdb := mgClient.Database(cfg.MongoDBName)

	// --- Repositories ---
	accountRepo := repositories.NewPostgresAccountRepository(pgdb)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mdb)
	commentRepo := repositories.NewMongoCommentRepository(mdb)
	communityRepo := repositories.NewMongoCommunityRepository(mdb)
	userGraphRepo := repositories.NewMongoUserGraphRepository(mdb)
	storyRepo := repositories.NewMongoStoryRepository(mdb)
	blobStore := media.NewLogStore(log)

	// --- Services ---
	notifications := services.NewNotificationService(notificationRepo, log)
	privacy := services.NewPrivacyService(userGraphRepo, communityRepo, postRepo)
	cleanup := services.NewCleanupService(postRepo, commentRepo, userGraphRepo, communityRepo, blobStore, log)
	reactions := services.NewReactionService(postRepo, commentRepo, privacy, notifications, log)
	membership := services.NewMembershipService(communityRepo, userGraphRepo, cleanup, notifications, log)
	communities := services.NewCommunityService(communityRepo, userGraphRepo, cleanup, blobStore, log)
	feeds := services.NewFeedService(postRepo, userGraphRepo, communityRepo, privacy)
	content := services.NewContentService(postRepo, commentRepo, storyRepo, userGraphRepo, communityRepo, privacy, cleanup, notifications, blobStore, log)
	friendships := services.NewFriendshipService(friendshipRepo, accountRepo, userGraphRepo, notifications, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(accountRepo, userGraphRepo, firebaseAuthClient, cfg.JWTSecret, log)
	authHandler.RegisterAuthRoutes(authGroup)

	feedHandler := handlers.NewFeedHandler(feeds)

	// --- Anonymous-readable routes (privacy filters still apply) ---
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalJWTAuthMiddleware(cfg.JWTSecret))
	feedHandler.RegisterPublicFeedRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(accountRepo, userGraphRepo)
	userHandler.RegisterProfileRoutes(api)

	postHandler := handlers.NewPostHandler(content)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(content)
	commentHandler.RegisterCommentRoutes(api)

	reactionHandler := handlers.NewReactionHandler(reactions)
	reactionHandler.RegisterReactionRoutes(api)

	feedHandler.RegisterFeedRoutes(api)

	communityHandler := handlers.NewCommunityHandler(communities)
	communityHandler.RegisterCommunityRoutes(api)

	membershipHandler := handlers.NewMembershipHandler(membership)
	membershipHandler.RegisterMembershipRoutes(api)

	storyHandler := handlers.NewStoryHandler(content)
	storyHandler.RegisterStoryRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notifications)
	notificationHandler.RegisterNotificationRoutes(api)

	friendshipHandler := handlers.NewFriendshipHandler(friendships)
	friendshipHandler.RegisterFriendshipRoutes(api)

	log.Info("All routes configured")
	return nil
}
