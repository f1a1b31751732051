package adminRoutes

import (
	adminController "devlaunch/controllers/admin"
	"devlaunch/middleware"
	adminValidator "devlaunch/validators/admin"
	courseValidator "devlaunch/validators/course"
	paginationValidator "devlaunch/validators/pagination"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app fiber.Router, h *adminController.Handler, jwt fiber.Handler) {
	adminGroup := app.Group("/admin", jwt, middleware.AdminOnly())

	adminGroup.Get("/stats", h.Stats)
	adminGroup.Get("/users", paginationValidator.List(), h.Users)
	adminGroup.Delete("/users/:id", adminValidator.UserID(), h.DeleteUser)
	adminGroup.Get("/courses", paginationValidator.List(), h.Courses)
	adminGroup.Post("/courses/:id/audit", courseValidator.CourseID(), adminValidator.Audit(), h.Audit)
}
