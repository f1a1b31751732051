package routers

import (
	"devlaunch/config"
	adminController "devlaunch/controllers/admin"
	authController "devlaunch/controllers/auth"
	courseController "devlaunch/controllers/course"
	userController "devlaunch/controllers/userControllers"
	"devlaunch/logger"
	"devlaunch/middleware"
	"devlaunch/repository"
	"devlaunch/routers/adminRoutes"
	"devlaunch/routers/authRoutes"
	"devlaunch/routers/courseRoutes"
	"devlaunch/routers/fileRoutes"
	"devlaunch/routers/userRoutes"
	"devlaunch/services/blacklist"
	"devlaunch/services/certificate"
	"devlaunch/services/email"
	"devlaunch/services/learning"
	"devlaunch/services/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Learning  *learning.Service
	Store     storage.ObjectStore
	Mailer    *email.Mailer
	Blacklist blacklist.Store
	Renderer  *certificate.Renderer
	Log       *logger.Logger
}

// Setup registers every route group on app.
func Setup(app *fiber.App, d Deps) {
	users := repository.NewUserRepository(d.DB)
	courses := repository.NewCourseRepository(d.DB)
	enrollments := repository.NewEnrollmentRepository(d.DB)
	otps := repository.NewOTPRepository(d.DB)
	issuer := certificate.NewIssuer(enrollments, courses, users, d.Store, d.Renderer, d.Log)

	jwt := middleware.JWTMiddleware(d.Config.JWTKey, d.Blacklist, d.Log)

	authRoutes.SetupAuthRoutes(app, authController.NewHandler(d.Config, users, otps, d.Mailer, d.Blacklist, d.Log), jwt)
	userRoutes.SetupUserRoutes(app, userController.NewHandler(d.Learning, users, courses, d.Mailer, d.Log), jwt)
	courseRoutes.SetupCourseRoutes(app, courseController.NewHandler(courses, d.Learning, d.Store, issuer, d.Log), jwt)
	adminRoutes.SetupAdminRoutes(app, adminController.NewHandler(d.Learning, users, courses, d.Log), jwt)

	if local, ok := d.Store.(*storage.LocalStore); ok {
		fileRoutes.SetupFileRoutes(app, local)
	}
}
