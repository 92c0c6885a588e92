package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"conference-management-api/config"
	"conference-management-api/controllers"
	"conference-management-api/middleware"
	"conference-management-api/routes"
	"conference-management-api/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		config.Logger.Info().Msg("No .env file found, using environment variables")
	}

	logFile := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	cfg := config.Load()

	// Initialize database
	config.InitDB()

	// Outbound email: transport per config, delivered through the outbox so
	// request handlers never block on SMTP.
	mailer := services.NewMailer(cfg.Mail, config.Logger)
	outbox, err := services.NewOutbox(cfg.Mail, mailer, config.Logger)
	if err != nil {
		config.Logger.Fatal().Err(err).Msg("failed to start email outbox")
	}
	defer outbox.Close()

	// Object storage is optional; upload endpoints report unavailable when
	// it is not configured.
	var storage services.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		s, err := services.NewMinIOStorage(cfg.Storage)
		if err != nil {
			config.Logger.Fatal().Err(err).Msg("failed to connect to object storage")
		}
		storage = s
	} else {
		config.Logger.Warn().Msg("object storage not configured, file uploads disabled")
	}

	googleProvider := services.NewGoogleProvider(cfg.OAuth.Google)
	orcidProvider := services.NewORCIDProvider(cfg.OAuth.ORCID)

	controllers.Setup(cfg, outbox, storage, googleProvider, orcidProvider)

	// Scheduled jobs. Locks are taken in MySQL so only one instance runs a
	// given job at a time.
	if cfg.Jobs.Enabled {
		scheduler := services.NewScheduler(config.DB, config.Logger)
		scheduler.Every(24*time.Hour, "cms.review-reminder",
			services.NewReviewReminderJob(config.DB, outbox, config.Logger))
		scheduler.Every(7*24*time.Hour, "cms.weekly-digest",
			services.NewWeeklyDigestJob(config.DB, outbox, config.Logger))
		scheduler.Start(context.Background())
	}

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Setup routes
	routes.SetupRoutes(router)

	config.Logger.Info().
		Str("port", cfg.ServerPort).
		Str("environment", cfg.Environment).
		Str("mail_transport", cfg.Mail.Transport).
		Bool("jobs_enabled", cfg.Jobs.Enabled).
		Msg("Conference Management API starting")

	if err := router.Run(":" + cfg.ServerPort); err != nil {
		config.Logger.Fatal().Err(err).Msg("failed to start server")
	}
}
