package main

import (
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/aryan-guptta-2007/immersaai/config"
	controller "github.com/aryan-guptta-2007/immersaai/controllers"
	"github.com/aryan-guptta-2007/immersaai/middleware"
	"github.com/aryan-guptta-2007/immersaai/routes"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Error reporting is optional; without a DSN the SDK is a no-op
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         config.AppConfig.SentryDSN,
		Environment: config.AppConfig.Environment,
	}); err != nil {
		logger.Printf("Sentry initialization failed: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// OAuth client config depends on loaded configuration
	controller.InitGoogleOAuth()

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
