package main

import (
	"context"
	"log"

	"github.com/caitlinwade/lumen/backend/internal/router"
	"github.com/caitlinwade/lumen/backend/internal/storage"
	"github.com/caitlinwade/lumen/backend/pkg/config"
	"github.com/caitlinwade/lumen/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg.PostgresConnStr)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDB(db)

	// Initialize blob storage
	ctx := context.Background()
	var blobStore storage.BlobStore
	if cfg.StorageBucket != "" {
		blobStore, err = storage.NewFirebaseStore(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
		if err != nil {
			log.Fatalf("Failed to initialize blob storage: %v", err)
		}
	} else {
		log.Println("No storage bucket configured, using in-memory blob store.")
		blobStore = storage.NewMemoryStore()
	}

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db, blobStore, cfg); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
