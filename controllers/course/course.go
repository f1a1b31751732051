package courseController

import (
	"fmt"

	"devlaunch/database/dbctx"
	"devlaunch/logger"
	"devlaunch/middleware"
	"devlaunch/models"
	"devlaunch/models/course"
	"devlaunch/repository"
	"devlaunch/services/certificate"
	"devlaunch/services/learning"
	"devlaunch/services/storage"
	courseValidator "devlaunch/validators/course"
	paginationValidator "devlaunch/validators/pagination"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	courses  *repository.CourseRepository
	learning *learning.Service
	store    storage.ObjectStore
	issuer   *certificate.Issuer
	log      *logger.Logger
}

func NewHandler(courses *repository.CourseRepository, svc *learning.Service, store storage.ObjectStore, issuer *certificate.Issuer, log *logger.Logger) *Handler {
	return &Handler{
		courses:  courses,
		learning: svc,
		store:    store,
		issuer:   issuer,
		log:      log.With("controller", "course"),
	}
}

type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// ownedCourse loads :id and checks the caller created it.
func (h *Handler) ownedCourse(c *fiber.Ctx) (*course.Course, error) {
	crs, err := h.courses.GetByID(dbctx.New(c.UserContext()), c.Locals("courseID").(uint))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: course not found", learning.ErrNotFound)
		}
		return nil, err
	}
	if crs.CreatorID != middleware.UserID(c) {
		return nil, fmt.Errorf("%w: you are not allowed to modify this course", learning.ErrForbidden)
	}
	return crs, nil
}

func (h *Handler) Create(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	userID := middleware.UserID(c)
	dbc := dbctx.New(c.UserContext())

	taken, err := h.courses.TitleTaken(dbc, userID, reqData.Title, 0)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have a course with this title!", nil)
	}

	crs := &course.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		Category:    reqData.Category,
		CreatorID:   userID,
		IsFree:      true,
		Price:       reqData.Price,
		IsPublished: reqData.IsPublished,
	}
	if reqData.IsFree != nil {
		crs.IsFree = *reqData.IsFree
	}

	thumbKey, err := h.storeThumbnail(c)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if thumbKey != "" {
		crs.ThumbnailKey = thumbKey
		crs.ThumbnailURL = h.store.PublicURL(storage.CategoryThumbnail, thumbKey)
	}

	if err := h.courses.Create(dbc, crs); err != nil {
		h.dropThumbnail(c, thumbKey)
		if repository.IsUniqueViolation(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have a course with this title!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	h.log.Info("Course created", "courseId", crs.ID, "creatorId", userID)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", crs)
}

// storeThumbnail uploads the optional "thumbnail" part and returns its key,
// or "" when the request carries none.
func (h *Handler) storeThumbnail(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("thumbnail")
	if err != nil || file == nil {
		return "", nil
	}
	key := storage.NewObjectKey("thumbnails", file.Filename)
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := h.store.Upload(c.UserContext(), storage.CategoryThumbnail, key, f, file.Header.Get("Content-Type")); err != nil {
		return "", err
	}
	return key, nil
}

// dropThumbnail removes a thumbnail object; failures are only logged.
func (h *Handler) dropThumbnail(c *fiber.Ctx, key string) {
	if key == "" {
		return
	}
	if err := h.store.Delete(c.UserContext(), storage.CategoryThumbnail, key); err != nil {
		h.log.Warn("Failed to delete thumbnail", "key", key, "error", err)
	}
}

// List returns published courses without their videos.
func (h *Handler) List(c *fiber.Ctx) error {
	q := c.Locals("validatedList").(*paginationValidator.ListQuery)
	page := repository.Page{Page: q.Page, Limit: q.Limit}.Normalized(20)
	courses, total, err := h.courses.List(dbctx.New(c.UserContext()), repository.CourseFilter{
		Search:        q.Search,
		PublishedOnly: true,
		Page:          page,
	})
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", ListResponse{Items: courses, Total: total, Page: page.Page, Limit: page.Limit})
}

// Get returns a course with its videos. Unpublished courses are visible to admins only.
func (h *Handler) Get(c *fiber.Ctx) error {
	crs, err := h.courses.GetWithVideos(dbctx.New(c.UserContext()), c.Locals("courseID").(uint))
	if err != nil {
		if repository.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	if !crs.IsPublished && middleware.Role(c) != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", crs)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	crs, err := h.ownedCourse(c)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	reqData := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	dbc := dbctx.New(c.UserContext())

	fields := map[string]interface{}{}
	if reqData.Title != nil && *reqData.Title != crs.Title {
		taken, err := h.courses.TitleTaken(dbc, crs.CreatorID, *reqData.Title, crs.ID)
		if err != nil {
			return middleware.ErrorResponse(c, h.log, err)
		}
		if taken {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have a course with this title!", nil)
		}
		fields["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		fields["description"] = *reqData.Description
	}
	if reqData.Category != nil {
		fields["category"] = *reqData.Category
	}
	if reqData.IsFree != nil {
		fields["is_free"] = *reqData.IsFree
	}
	if reqData.Price != nil {
		fields["price"] = *reqData.Price
	}
	if reqData.IsPublished != nil {
		fields["is_published"] = *reqData.IsPublished
	}

	thumbKey, err := h.storeThumbnail(c)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if thumbKey != "" {
		fields["thumbnail_key"] = thumbKey
		fields["thumbnail_url"] = h.store.PublicURL(storage.CategoryThumbnail, thumbKey)
	}

	if err := h.courses.UpdateFields(dbc, crs.ID, fields); err != nil {
		h.dropThumbnail(c, thumbKey)
		if repository.IsUniqueViolation(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have a course with this title!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	if thumbKey != "" {
		h.dropThumbnail(c, crs.ThumbnailKey)
	}
	updated, err := h.courses.GetByID(dbc, crs.ID)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", updated)
}

// Delete hides the course; enrollment records and the ledger stay.
func (h *Handler) Delete(c *fiber.Ctx) error {
	crs, err := h.ownedCourse(c)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if err := h.courses.SoftDelete(dbctx.New(c.UserContext()), crs.ID); err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	h.log.Info("Course deleted", "courseId", crs.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}
