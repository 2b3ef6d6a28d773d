package router

import (
	"log"
	"time"

	"github.com/caitlinwade/lumen/backend/internal/handlers"
	"github.com/caitlinwade/lumen/backend/internal/middleware"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/caitlinwade/lumen/backend/internal/repositories"
	"github.com/caitlinwade/lumen/backend/internal/storage"
	"github.com/caitlinwade/lumen/backend/internal/token"
	"github.com/caitlinwade/lumen/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes migrates the schema, wires dependencies and registers all
// application routes.
func SetupRoutes(e *echo.Echo, db *gorm.DB, blobStore storage.BlobStore, cfg *config.Config) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Media{},
		&models.ProfilePicture{},
	)
	if err != nil {
		return err
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	mediaRepo := repositories.NewPostgresMediaRepository(db)

	tokens := token.NewService(cfg.JWTSecret, time.Duration(cfg.TokenExpireMinutes)*time.Minute)

	// --- Unprotected routes ---
	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	authHandler.RegisterAuthRoutes(e)
	log.Println("Auth routes configured.")

	userHandler := handlers.NewUserHandler(userRepo, mediaRepo, blobStore)
	userHandler.RegisterPublicRoutes(e)

	// --- Protected routes (require a valid bearer token) ---
	api := e.Group("")
	api.Use(middleware.Auth(tokens, userRepo))
	log.Println("Token authentication middleware applied.")

	userHandler.RegisterProfileRoutes(api)
	log.Println("User routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, userRepo, likeRepo, mediaRepo, blobStore)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	mediaHandler := handlers.NewMediaHandler(mediaRepo, postRepo, blobStore)
	mediaHandler.RegisterMediaRoutes(api)
	log.Println("Media routes configured.")

	log.Println("All routes configured.")
	return nil
}
