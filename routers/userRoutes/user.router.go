package userRoutes

import (
	userController "devlaunch/controllers/userControllers"
	courseValidator "devlaunch/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app fiber.Router, h *userController.Handler, jwt fiber.Handler) {
	userGroup := app.Group("/user", jwt)

	userGroup.Get("/me", h.Me)
	userGroup.Get("/me/courses", h.MyCourses)
	userGroup.Post("/courses/enroll/:id", courseValidator.CourseID(), h.Enroll)
	userGroup.Patch("/me/courses/:id", courseValidator.CourseID(), courseValidator.VideoKey(), h.ToggleVideo)
	userGroup.Get("/me/courses/:id/progress", courseValidator.CourseID(), h.Progress)
}
