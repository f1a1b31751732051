package adminValidator

import (
	"strconv"
	"strings"

	"devlaunch/middleware"

	"github.com/gofiber/fiber/v2"
)

// UserID parses :id into Locals "targetUserID".
func UserID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(strings.TrimSpace(c.Params("id")), 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}
		c.Locals("targetUserID", uint(id))
		return c.Next()
	}
}

// Audit reads ?repair= into Locals "repair".
func Audit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		repair := false
		if raw := strings.TrimSpace(c.Query("repair")); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return middleware.ValidationErrorResponse(c, map[string]string{"repair": "repair must be true or false!"})
			}
			repair = v
		}
		c.Locals("repair", repair)
		return c.Next()
	}
}
