package courseRoutes

import (
	courseController "devlaunch/controllers/course"
	"devlaunch/middleware"
	courseValidator "devlaunch/validators/course"
	paginationValidator "devlaunch/validators/pagination"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app fiber.Router, h *courseController.Handler, jwt fiber.Handler) {
	// public catalog, registered ahead of the group's jwt
	app.Get("/courses", paginationValidator.List(), h.List)

	courseGroup := app.Group("/courses", jwt)
	admin := middleware.AdminOnly()

	courseGroup.Post("/", admin, courseValidator.CreateCourse(), h.Create)
	courseGroup.Get("/:id", courseValidator.CourseID(), h.Get)
	courseGroup.Patch("/:id", admin, courseValidator.CourseID(), courseValidator.UpdateCourse(), h.Update)
	courseGroup.Delete("/:id", admin, courseValidator.CourseID(), h.Delete)

	courseGroup.Post("/:id/videos", admin, courseValidator.CourseID(), courseValidator.UploadVideo(), h.UploadVideo)
	courseGroup.Get("/:id/videos/signed-url", courseValidator.CourseID(), courseValidator.VideoKey(), h.SignedVideoURL)
	courseGroup.Delete("/:id/videos", admin, courseValidator.CourseID(), courseValidator.VideoKey(), h.DeleteVideo)

	courseGroup.Get("/:id/certificate", courseValidator.CourseID(), h.Certificate)
}
