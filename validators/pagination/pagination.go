package paginationValidator

import (
	"strings"

	"devlaunch/middleware"

	"github.com/gofiber/fiber/v2"
)

type ListQuery struct {
	Search string `json:"search" query:"search" validate:"max=100"`
	Page   int    `json:"page" query:"page" validate:"gte=0"`
	Limit  int    `json:"limit" query:"limit" validate:"gte=0,max=100"`
}

// List validates ?search=&page=&limit= and stores the result as "validatedList".
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Search = strings.TrimSpace(reqData.Search)

		if err := middleware.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, middleware.ValidationErrors(err))
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}
