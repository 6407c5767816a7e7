package routes

import (
	"github.com/SaintVisionAi/saintsal-chat-sub001/controllers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	app.Post("/api/admin/auth", controllers.AdminAuth)

	admin := app.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminOnly())

	admin.Get("/users", controllers.ListUsers)
	admin.Post("/users", controllers.AdminCreateUser)
	admin.Delete("/users", controllers.AdminDeleteUser)
	admin.Post("/users/reset-password", controllers.ResetUserPassword)
	admin.Get("/stats", controllers.GetStats)
	admin.Get("/audit", controllers.GetAuditLogs)
}
