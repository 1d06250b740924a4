package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"github.com/aryan-guptta-2007/immersaai/config"
	controller "github.com/aryan-guptta-2007/immersaai/controllers"
	"github.com/aryan-guptta-2007/immersaai/middleware"
	"github.com/aryan-guptta-2007/immersaai/utils"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize controllers with their respective loggers
	generateController := controller.NewGenerateController(
		db,
		utils.NewOrchestrator(config.AppConfig.OpenAIAPIKey, log.New(os.Stdout, "AI: ", log.LstdFlags)),
		log.New(os.Stdout, "GENERATE: ", log.Ldate|log.Ltime|log.Lshortfile),
	)
	paymentController := controller.NewPaymentController(db, log.New(os.Stdout, "PAYMENT: ", log.LstdFlags))
	webhookController := controller.NewWebhookController(db, log.New(os.Stdout, "WEBHOOK: ", log.LstdFlags))
	adminController := controller.NewAdminController(db, log.New(os.Stdout, "ADMIN: ", log.LstdFlags))
	entitlementController := controller.NewEntitlementController(db, log.New(os.Stdout, "ENTITLEMENT: ", log.LstdFlags))

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)
	auth.Post("/refresh", controller.RefreshToken)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Generation: anonymous use is allowed under the IP throttle, so the
	// identity is optional and resolved before the limiter keys on it
	api.Post("/generate", middleware.OptionalAuth(), middleware.GenerateRateLimiter(), generateController.Generate)
	api.Get("/explore", generateController.Explore)
	api.Get("/generations", middleware.Protected(), generateController.ListMyGenerations)
	api.Get("/entitlement", middleware.Protected(), entitlementController.GetEntitlement)

	// Payment routes
	payments := api.Group("/payments")
	payments.Post("/generation", paymentController.SubmitGenerationPayment)
	payments.Post("/upgrade", middleware.Protected(), paymentController.SubmitUpgradePayment)
	payments.Post("/checkout", middleware.Protected(), paymentController.CreateCheckoutOrder)
	payments.Post("/webhook", webhookController.HandlePaymentWebhook)

	// Admin routes, restricted to the configured operator identity
	admin := api.Group("/admin", middleware.Protected(), middleware.AdminOnly())
	admin.Get("/payments/pending", adminController.ListPending)
	admin.Post("/payments/approve", adminController.ApprovePayment)
	admin.Post("/generations/approve", adminController.ApproveGeneration)
}
