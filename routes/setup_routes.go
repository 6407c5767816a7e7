package routes

import "github.com/gofiber/fiber/v2"

func SetupRoutes(app *fiber.App) {
	AuthRoutes(app)
	AdminRoutes(app)
	TeamRoutes(app)
	ChatRoutes(app)
	BillingRoutes(app)
	IntegrationRoutes(app)
}
