package userController

import (
	"context"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/logger"
	"devlaunch/middleware"
	"devlaunch/repository"
	"devlaunch/services/email"
	"devlaunch/services/learning"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	learning *learning.Service
	users    *repository.UserRepository
	courses  *repository.CourseRepository
	mailer   *email.Mailer
	log      *logger.Logger
}

func NewHandler(svc *learning.Service, users *repository.UserRepository, courses *repository.CourseRepository, mailer *email.Mailer, log *logger.Logger) *Handler {
	return &Handler{
		learning: svc,
		users:    users,
		courses:  courses,
		mailer:   mailer,
		log:      log.With("controller", "user"),
	}
}

// EnrolledCourse is one entry of the caller's enrolled list.
type EnrolledCourse struct {
	CourseID        uint      `json:"courseId"`
	Title           string    `json:"title"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	Progress        int       `json:"progress"`
	CompletedVideos []string  `json:"completedVideos"`
	EnrolledAt      time.Time `json:"enrolledAt"`
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.users.GetByID(dbctx.New(c.UserContext()), middleware.UserID(c))
	if err != nil {
		if repository.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}

func (h *Handler) MyCourses(c *fiber.Ctx) error {
	recs, err := h.learning.MyCourses(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	out := make([]EnrolledCourse, 0, len(recs))
	for _, rec := range recs {
		entry := EnrolledCourse{
			CourseID:        rec.CourseID,
			Progress:        rec.Progress,
			CompletedVideos: rec.Completed(),
			EnrolledAt:      rec.CreatedAt,
		}
		if rec.Course != nil {
			entry.Title = rec.Course.Title
			entry.ThumbnailURL = rec.Course.ThumbnailURL
		}
		out = append(out, entry)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled courses fetched successfully!", out)
}

func (h *Handler) Enroll(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID := c.Locals("courseID").(uint)

	rec, err := h.learning.Enroll(c.UserContext(), learning.EnrollRequest{UserID: userID, CourseID: courseID})
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}

	go h.sendEnrollmentEmail(userID, courseID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", learning.ProgressView{
		CourseID:        rec.CourseID,
		Progress:        rec.Progress,
		CompletedVideos: rec.Completed(),
	})
}

func (h *Handler) sendEnrollmentEmail(userID, courseID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	dbc := dbctx.New(ctx)

	user, err := h.users.GetByID(dbc, userID)
	if err != nil {
		h.log.Warn("Enrollment email skipped", "userId", userID, "error", err)
		return
	}
	course, err := h.courses.GetByID(dbc, courseID)
	if err != nil {
		h.log.Warn("Enrollment email skipped", "courseId", courseID, "error", err)
		return
	}
	if err := h.mailer.Enrolled(ctx, user.Email, user.Name, course.Title); err != nil {
		h.log.Warn("Enrollment email failed", "userId", userID, "courseId", courseID, "error", err)
	}
}

// ToggleVideo marks or unmarks ?videoKey= as watched.
func (h *Handler) ToggleVideo(c *fiber.Ctx) error {
	view, err := h.learning.ToggleVideo(c.UserContext(), learning.ToggleRequest{
		UserID:   middleware.UserID(c),
		CourseID: c.Locals("courseID").(uint),
		VideoKey: c.Locals("videoKey").(string),
	})
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", view)
}

func (h *Handler) Progress(c *fiber.Ctx) error {
	view, err := h.learning.Progress(c.UserContext(), middleware.UserID(c), c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", view)
}
