package routes

import (
	"github.com/SaintVisionAi/saintsal-chat-sub001/controllers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/middleware"
	"github.com/gofiber/fiber/v2"
)

func BillingRoutes(app *fiber.App) {
	billing := app.Group("/api/billing")

	// Webhook authenticates by signature, not session.
	billing.Post("/webhook", controllers.StripeWebhook)

	billing.Get("/products", middleware.AuthMiddleware, controllers.GetProducts)
	billing.Post("/checkout", middleware.AuthMiddleware, controllers.CreateCheckout)
	billing.Post("/sync", middleware.AuthMiddleware, middleware.AdminOnly(), controllers.SyncPlans)
}
