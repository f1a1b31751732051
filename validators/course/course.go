package courseValidator

import (
	"slices"
	"strconv"
	"strings"

	"devlaunch/middleware"
	"devlaunch/models/course"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Title       string  `json:"title" form:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" form:"description" validate:"required,min=5"`
	Category    string  `json:"category" form:"category"`
	IsFree      *bool   `json:"is_free" form:"is_free"`
	Price       float64 `json:"price" form:"price" validate:"gte=0"`
	IsPublished bool    `json:"is_published" form:"is_published"`
}

type UpdateCourseRequest struct {
	Title       *string  `json:"title" form:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" form:"description" validate:"omitempty,min=5"`
	Category    *string  `json:"category" form:"category"`
	IsFree      *bool    `json:"is_free" form:"is_free"`
	Price       *float64 `json:"price" form:"price" validate:"omitempty,gte=0"`
	IsPublished *bool    `json:"is_published" form:"is_published"`
}

type UploadVideoRequest struct {
	Title       string  `json:"title" form:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description" form:"description"`
	Duration    float64 `json:"duration" form:"duration" validate:"gte=0"`
}

func validCategory(category string) bool {
	return category == "" || slices.Contains(course.Categories, category)
}

// CourseID parses :id into Locals "courseID".
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.ParseUint(strings.TrimSpace(c.Params("id")), 10, 64)
		if err != nil || courseID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", uint(courseID))
		return c.Next()
	}
}

// VideoKey reads ?key= (or ?videoKey=) into Locals "videoKey".
func VideoKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Query("key", c.Query("videoKey")))
		if key == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"videoKey": "videoKey is required!"})
		}
		if len(key) > 512 {
			return middleware.ValidationErrorResponse(c, map[string]string{"videoKey": "videoKey must be at most 512 characters long!"})
		}
		c.Locals("videoKey", key)
		return c.Next()
	}
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		errors := make(map[string]string)
		if err := middleware.Validate.Struct(reqData); err != nil {
			errors = middleware.ValidationErrors(err)
		}
		if !validCategory(reqData.Category) {
			errors["category"] = "category must be one of: " + strings.Join(course.Categories, ", ")
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Title != nil {
			t := strings.TrimSpace(*reqData.Title)
			reqData.Title = &t
		}

		errors := make(map[string]string)
		if err := middleware.Validate.Struct(reqData); err != nil {
			errors = middleware.ValidationErrors(err)
		}
		if reqData.Category != nil && !validCategory(*reqData.Category) {
			errors["category"] = "category must be one of: " + strings.Join(course.Categories, ", ")
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// UploadVideo validates the multipart fields and requires a "file" part.
func UploadVideo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UploadVideoRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		errors := make(map[string]string)
		if err := middleware.Validate.Struct(reqData); err != nil {
			errors = middleware.ValidationErrors(err)
		}
		file, err := c.FormFile("file")
		if err != nil || file == nil {
			errors["file"] = "Video file is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVideo", reqData)
		c.Locals("videoFile", file)
		return c.Next()
	}
}
