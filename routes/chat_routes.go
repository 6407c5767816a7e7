package routes

import (
	"github.com/SaintVisionAi/saintsal-chat-sub001/controllers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/middleware"
	"github.com/gofiber/fiber/v2"
)

func ChatRoutes(app *fiber.App) {
	app.Post("/api/chat", middleware.AuthMiddleware, controllers.Chat)
	app.Post("/api/playground", middleware.AuthMiddleware, controllers.Playground)
	app.Post("/api/compare", middleware.AuthMiddleware, controllers.Compare)
	app.Post("/api/speech/tts", middleware.AuthMiddleware, controllers.TextToSpeech)
}
