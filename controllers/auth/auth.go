package authController

import (
	"context"
	"crypto/subtle"
	"time"

	"devlaunch/config"
	"devlaunch/database/dbctx"
	"devlaunch/logger"
	"devlaunch/middleware"
	"devlaunch/models"
	"devlaunch/repository"
	"devlaunch/services/blacklist"
	"devlaunch/services/email"
	"devlaunch/utils"
	authValidator "devlaunch/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	cfg       *config.Config
	users     *repository.UserRepository
	otps      *repository.OTPRepository
	mailer    *email.Mailer
	blacklist blacklist.Store
	log       *logger.Logger
}

func NewHandler(cfg *config.Config, users *repository.UserRepository, otps *repository.OTPRepository, mailer *email.Mailer, bl blacklist.Store, log *logger.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		users:     users,
		otps:      otps,
		mailer:    mailer,
		blacklist: bl,
		log:       log.With("controller", "auth"),
	}
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (h *Handler) issueToken(c *fiber.Ctx, status int, message string, user *models.User) error {
	token, exp, err := middleware.GenerateJWT(h.cfg.JWTKey, user.ID, user.Role, time.Duration(h.cfg.JWTExpiryHours)*time.Hour)
	if err != nil {
		h.log.Error("Error generating token", "userId", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}
	return middleware.JsonResponse(c, status, true, message, authResponse{Token: token, ExpiresAt: exp, User: user})
}

// SendOTP stores a pending signup and emails its code.
func (h *Handler) SendOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSignup").(*authValidator.SendOTPRequest)
	dbc := dbctx.New(c.UserContext())

	taken, err := h.users.EmailTaken(dbc, reqData.Email)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), h.cfg.SaltRound)
	if err != nil {
		h.log.Error("Error hashing password", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
	code, err := utils.GenerateOTP()
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}

	ttl := time.Duration(h.cfg.OTPTTLMinutes) * time.Minute
	otp := &models.OTP{
		Email:        reqData.Email,
		Name:         reqData.Name,
		PasswordHash: string(hashedPassword),
		Code:         code,
		ExpiresAt:    time.Now().Add(ttl),
	}
	if err := h.otps.Upsert(dbc, otp); err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}

	if err := h.mailer.SignupCode(c.UserContext(), reqData.Email, reqData.Name, code, ttl); err != nil {
		h.log.Error("Error sending OTP email", "email", reqData.Email, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send OTP email!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent to your email!", nil)
}

// VerifyOTP completes a signup and logs the new user in.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedOTP").(*authValidator.VerifyOTPRequest)
	dbc := dbctx.New(c.UserContext())

	otp, err := h.otps.GetByEmail(dbc, reqData.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "OTP not found or expired!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	if otp.Expired(time.Now()) {
		_ = h.otps.DeleteByEmail(dbc, reqData.Email)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "OTP not found or expired!", nil)
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(reqData.Code)) != 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid OTP!", nil)
	}

	user := &models.User{
		Name:         otp.Name,
		Email:        otp.Email,
		PasswordHash: otp.PasswordHash,
		Role:         models.RoleUser,
	}
	if err := h.users.Create(dbc, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	if err := h.otps.DeleteByEmail(dbc, reqData.Email); err != nil {
		h.log.Warn("Failed to delete used OTP", "email", reqData.Email, "error", err)
	}

	go func(email, name string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.mailer.Welcome(ctx, email, name); err != nil {
			h.log.Warn("Welcome email failed", "email", email, "error", err)
		}
	}(user.Email, user.Name)

	h.log.Info("User signed up", "userId", user.ID)
	return h.issueToken(c, fiber.StatusCreated, "Signup successful!", user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	user, err := h.users.GetByEmail(dbctx.New(c.UserContext()), reqData.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}
	return h.issueToken(c, fiber.StatusOK, "Login successful!", user)
}

// Logout revokes the presented token until it would have expired.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	exp, ok := c.Locals("tokenExp").(time.Time)
	if !ok {
		exp = time.Now().Add(time.Duration(h.cfg.JWTExpiryHours) * time.Hour)
	}
	if err := h.blacklist.Revoke(c.UserContext(), token, exp); err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully!", nil)
}
