package middleware

import (
	"errors"
	"strings"
	"unicode"

	"devlaunch/logger"
	"devlaunch/services/learning"
	"devlaunch/services/storage"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

var errorStatus = []struct {
	err    error
	status int
}{
	{learning.ErrNotFound, fiber.StatusNotFound},
	{storage.ErrObjectNotFound, fiber.StatusNotFound},
	{learning.ErrForbidden, fiber.StatusForbidden},
	{learning.ErrConflict, fiber.StatusConflict},
	{learning.ErrInvalidState, fiber.StatusUnprocessableEntity},
	{learning.ErrInvalidInput, fiber.StatusUnprocessableEntity},
}

// ErrorResponse writes err with the status its sentinel maps to. Unknown
// errors are logged and reported as a bare 500.
func ErrorResponse(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return JsonResponse(c, m.status, false, clientMessage(err), nil)
		}
	}
	log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error!", nil)
}

// clientMessage drops the sentinel prefix ("not found: course not found")
// and capitalises the rest.
func clientMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
