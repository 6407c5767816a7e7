package routes

import (
	"github.com/SaintVisionAi/saintsal-chat-sub001/controllers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")
	auth.Post("/signup", controllers.Signup)
	auth.Post("/login", controllers.Login)
	auth.Post("/logout", controllers.Logout)
	auth.Get("/check", controllers.CheckAuth)
	auth.Get("/verify-email", controllers.VerifyEmail)

	// Protected Routes
	auth.Get("/me", middleware.AuthMiddleware, controllers.GetMe)
	auth.Put("/me", middleware.AuthMiddleware, controllers.UpdateMe)
}
