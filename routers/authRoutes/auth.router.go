package authRoutes

import (
	authController "devlaunch/controllers/auth"
	authValidator "devlaunch/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app fiber.Router, h *authController.Handler, jwt fiber.Handler) {
	authGroup := app.Group("/auth")

	authGroup.Post("/send-otp", authValidator.SendOTP(), h.SendOTP)
	authGroup.Post("/signup/verify-otp", authValidator.VerifyOTP(), h.VerifyOTP)
	authGroup.Post("/login", authValidator.Login(), h.Login)
	authGroup.Post("/logout", jwt, h.Logout)
}
