package middleware

import (
	"devlaunch/models"

	"github.com/gofiber/fiber/v2"
)

// AdminOnly lets the request through only for the admin role. It must run
// after JWTMiddleware.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == 0 {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		if Role(c) != models.RoleAdmin {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}
