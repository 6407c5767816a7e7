package routes

import (
	"github.com/SaintVisionAi/saintsal-chat-sub001/controllers"
	"github.com/SaintVisionAi/saintsal-chat-sub001/middleware"
	"github.com/gofiber/fiber/v2"
)

func TeamRoutes(app *fiber.App) {
	teams := app.Group("/api/teams")
	teams.Use(middleware.AuthMiddleware)

	teams.Post("/create", controllers.CreateTeam)
	teams.Get("/info", controllers.GetTeamInfo)
	teams.Post("/invite", middleware.PermissionMiddleware("invite_members"), controllers.InviteMember)
	teams.Post("/accept", controllers.AcceptInvitation)
	teams.Delete("/remove", middleware.PermissionMiddleware("remove_members"), controllers.RemoveMember)
	teams.Post("/transfer-ownership", middleware.PermissionMiddleware("transfer_ownership"), controllers.TransferOwnership)
	teams.Post("/leave", controllers.LeaveTeam)
}
