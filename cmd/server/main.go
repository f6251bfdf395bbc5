package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/princeprakhar/reviewflow-backend/internal/api/routes"
	"github.com/princeprakhar/reviewflow-backend/internal/config"
	"github.com/princeprakhar/reviewflow-backend/internal/database"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger.Init()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Init(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database: ", err)
	}

	if cfg.SeedDemo {
		created, err := database.SeedDemo(db)
		if err != nil {
			logger.Fatal("Failed to seed demo data: ", err)
		}
		if created {
			logger.Info("Demo account created: " + database.DemoEmail)
		}
	}

	deps := routes.Dependencies{Notifier: services.LogNotifier{}}
	if cfg.SMTPEnabled() {
		deps.Notifier = services.NewEmailService(cfg)
	} else {
		logger.Warn("SMTP credentials not set, outbound email will only be logged")
	}
	if cfg.S3Enabled() {
		archiver, err := services.NewS3ReportArchiver(cfg.S3Region, cfg.S3BucketName, cfg.S3AccessKey, cfg.S3SecretKey)
		if err != nil {
			logger.Fatal("Failed to initialize report archiver: ", err)
		}
		deps.Archiver = archiver
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()

	// Setup routes
	if err := routes.SetupRoutes(router, db, cfg, deps); err != nil {
		logger.Fatal("Failed to setup routes: ", err)
	}

	logger.Info("Server starting on port " + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server: ", err)
	}
}
