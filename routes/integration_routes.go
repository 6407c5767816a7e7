package routes

import (
	"github.com/SaintVisionAi/saintsal-chat-sub001/controllers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/middleware"
	"github.com/gofiber/fiber/v2"
)

func IntegrationRoutes(app *fiber.App) {
	integrations := app.Group("/api/integrations")
	integrations.Use(middleware.AuthMiddleware)

	integrations.Get("/github/repos", controllers.GitHubRepos)
	integrations.Get("/vercel/projects", controllers.VercelProjects)
	integrations.Post("/ghl/contacts", controllers.GHLCreateContact)
}
