package courseController

import (
	"errors"
	"mime/multipart"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/middleware"
	"devlaunch/models/course"
	"devlaunch/repository"
	"devlaunch/services/learning"
	"devlaunch/services/storage"
	courseValidator "devlaunch/validators/course"

	"github.com/gofiber/fiber/v2"
)

type SignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadVideo stores the file and appends it to the course. Later toggles
// divide by the new video count; existing progress is not recomputed.
func (h *Handler) UploadVideo(c *fiber.Ctx) error {
	crs, err := h.ownedCourse(c)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	reqData := c.Locals("validatedVideo").(*courseValidator.UploadVideoRequest)
	file := c.Locals("videoFile").(*multipart.FileHeader)

	key := storage.NewObjectKey("videos", file.Filename)
	f, err := file.Open()
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	err = h.store.Upload(c.UserContext(), storage.CategoryVideo, key, f, file.Header.Get("Content-Type"))
	_ = f.Close()
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}

	video := &course.Video{
		CourseID:    crs.ID,
		Key:         key,
		Title:       reqData.Title,
		Description: reqData.Description,
		Duration:    reqData.Duration,
	}
	if err := h.courses.AddVideo(dbctx.New(c.UserContext()), video); err != nil {
		if delErr := h.store.Delete(c.UserContext(), storage.CategoryVideo, key); delErr != nil {
			h.log.Warn("Failed to remove orphaned video", "key", key, "error", delErr)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	h.log.Info("Video uploaded", "courseId", crs.ID, "key", key)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Video uploaded successfully!", video)
}

// SignedVideoURL gives enrolled users (and the course creator) a 4h link.
func (h *Handler) SignedVideoURL(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	key := c.Locals("videoKey").(string)
	userID := middleware.UserID(c)
	dbc := dbctx.New(c.UserContext())

	crs, err := h.courses.GetByID(dbc, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	if crs.CreatorID != userID {
		if _, err := h.learning.Enrollment(c.UserContext(), userID, courseID); err != nil {
			if errors.Is(err, learning.ErrNotFound) {
				return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied. Please enroll in the course!", nil)
			}
			return middleware.ErrorResponse(c, h.log, err)
		}
	}

	exists, err := h.courses.VideoExists(dbc, courseID, key)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	if !exists {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found in course!", nil)
	}

	url, err := h.store.SignedURL(c.UserContext(), storage.CategoryVideo, key, storage.VideoURLExpiry)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Signed URL generated successfully!", SignedURLResponse{
		URL:       url,
		ExpiresAt: time.Now().Add(storage.VideoURLExpiry),
	})
}

// DeleteVideo removes the video from the course. Keys already in users'
// completed lists stay there.
func (h *Handler) DeleteVideo(c *fiber.Ctx) error {
	crs, err := h.ownedCourse(c)
	if err != nil {
		return middleware.ErrorResponse(c, h.log, err)
	}
	key := c.Locals("videoKey").(string)

	if err := h.courses.DeleteVideo(dbctx.New(c.UserContext()), crs.ID, key); err != nil {
		if repository.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found in course!", nil)
		}
		return middleware.ErrorResponse(c, h.log, err)
	}
	if err := h.store.Delete(c.UserContext(), storage.CategoryVideo, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		h.log.Warn("Failed to delete video object", "key", key, "error", err)
	}
	h.log.Info("Video deleted", "courseId", crs.ID, "key", key)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video deleted successfully!", nil)
}
