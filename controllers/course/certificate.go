package courseController

import (
	"devlaunch/middleware"

	"github.com/gofiber/fiber/v2"
)

// Certificate issues (or re-signs) the caller's certificate for a completed course.
func (h *Handler) Certificate(c *fiber.Ctx) error {
	cert, err := h.issuer.Issue(c.UserContext(), middleware.UserID(c), c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate generated successfully!", cert)
}
