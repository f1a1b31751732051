package adminController

import (
	"errors"

	"devlaunch/database/dbctx"
	"devlaunch/logger"
	"devlaunch/middleware"
	"devlaunch/models"
	"devlaunch/models/course"
	"devlaunch/repository"
	"devlaunch/services/learning"
	paginationValidator "devlaunch/validators/pagination"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	learning *learning.Service
	users    *repository.UserRepository
	courses  *repository.CourseRepository
	log      *logger.Logger
}

func NewHandler(svc *learning.Service, users *repository.UserRepository, courses *repository.CourseRepository, log *logger.Logger) *Handler {
	return &Handler{
		learning: svc,
		users:    users,
		courses:  courses,
		log:      log.With("controller", "admin"),
	}
}

type StatsResponse struct {
	TotalUsers int64 `json:"totalUsers"`
	learning.LedgerStats
}

type PageResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func pageOf(q *paginationValidator.ListQuery, defaultLimit int) repository.Page {
	return repository.Page{Page: q.Page, Limit: q.Limit}.Normalized(defaultLimit)
}

// Stats reads the stored course rollups; nothing is recomputed here.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.learning.Stats(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	totalUsers, err := h.users.Count(dbctx.New(c.UserContext()))
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", StatsResponse{
		TotalUsers:  totalUsers,
		LedgerStats: stats,
	})
}

func (h *Handler) Users(c *fiber.Ctx) error {
	q := c.Locals("validatedList").(*paginationValidator.ListQuery)
	page := pageOf(q, 10)
	users, total, err := h.users.List(dbctx.New(c.UserContext()), q.Search, page)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", PageResponse{
		Items: users, Total: total, Page: page.Page, Limit: page.Limit,
	})
}

// Courses lists every live course, published or not.
func (h *Handler) Courses(c *fiber.Ctx) error {
	q := c.Locals("validatedList").(*paginationValidator.ListQuery)
	page := pageOf(q, 20)
	courses, total, err := h.courses.List(dbctx.New(c.UserContext()), repository.CourseFilter{Search: q.Search, Page: page})
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", PageResponse{
		Items: courses, Total: total, Page: page.Page, Limit: page.Limit,
	})
}

// Audit compares a course ledger with its enrollment records and, with
// ?repair=true, overwrites the ledger with the recomputation.
func (h *Handler) Audit(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	if c.Locals("repair").(bool) {
		report, err := h.learning.RepairCourse(c.UserContext(), courseID)
		if err != nil {
			return middleware.ErrorResponse(c, h.log, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Ledger repaired!", report)
	}

	report, err := h.learning.AuditCourse(c.UserContext(), courseID)
	switch {
	case errors.Is(err, learning.ErrInconsistencyDetected):
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Ledger drift detected!", report)
	case err != nil:
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ledger is consistent!", report)
}

// DeleteUser removes a user and takes their progress out of every course ledger.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	target := c.Locals("targetUserID").(uint)
	if target == middleware.UserID(c) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}
	if err := h.learning.RemoveUser(c.UserContext(), target); err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}
