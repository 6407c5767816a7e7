// main.go
package main

import (
	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/controllers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/routes"
	"github.com/SaintVisionAi/saintsal-chat-sub001/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	logger := config.InitLogger()
	defer logger.Sync()

	config.LoadEnv()

	// Get environment
	env := config.GetEnv("APP_ENV", "development")

	// Shipping the development session secret to production would let
	// anyone mint sessions. Refuse to start.
	if env == "production" && config.GetEnv("SESSION_SECRET", utils.DefaultSessionSecret) == utils.DefaultSessionSecret {
		logger.Fatal("SESSION_SECRET is unset or still the development default; refusing to start in production")
	}

	config.ConnectDB()
	defer config.DisconnectDB()

	controllers.InitProviders()

	app := fiber.New()

	// Configure CORS based on environment
	configureCORS(app, env)

	routes.SetupRoutes(app)

	// Get port from environment or use default
	port := config.GetEnv("PORT", "8080")

	logger.Info("Server starting", zap.String("port", port), zap.String("env", env))
	if err := app.Listen(":" + port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

// Configure CORS middleware based on environment
func configureCORS(app *fiber.App, env string) {
	var corsConfig cors.Config

	switch env {
	case "production":
		// Strict configuration for production
		allowedOrigins := config.GetEnv("ALLOWED_ORIGINS", "https://saintvisionai.com")
		corsConfig = cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			ExposeHeaders:    "Content-Length, Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}
	case "staging":
		// Moderate configuration for staging
		allowedOrigins := config.GetEnv("ALLOWED_ORIGINS", "https://staging.saintvisionai.com")
		corsConfig = cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
			ExposeHeaders:    "Content-Length, Content-Type",
			AllowCredentials: true,
			MaxAge:           3600,
		}
	default:
		// Permissive configuration for development
		allowedOrigins := config.GetEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
		corsConfig = cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
			ExposeHeaders:    "Content-Length, Content-Type",
			AllowCredentials: true,
			MaxAge:           1800,
		}
	}

	app.Use(cors.New(corsConfig))
}
