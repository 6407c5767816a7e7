package middleware

import (
	"net/http"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/gofiber/fiber/v2"
)

// PermissionMiddleware checks the caller's team role against the permission
// map. The role comes from the directory row that AuthMiddleware resolved,
// so it survives cookie staleness. Admin sessions pass every check.
func PermissionMiddleware(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isAdmin, _ := c.Locals("is_admin").(bool); isAdmin {
			return c.Next()
		}

		role, _ := c.Locals("team_role").(string)
		if role == "" {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Not a member of any team"})
		}

		if !config.HasPermission(role, requiredPermission) {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Permission denied"})
		}

		return c.Next()
	}
}
