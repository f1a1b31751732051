package fileRoutes

import (
	"os"

	"devlaunch/middleware"
	"devlaunch/services/storage"

	"github.com/gofiber/fiber/v2"
)

// SetupFileRoutes serves objects of a LocalStore to holders of a signed URL.
// Thumbnails are public.
func SetupFileRoutes(app fiber.Router, store *storage.LocalStore) {
	app.Get("/files/:category/*", func(c *fiber.Ctx) error {
		cat := storage.Category(c.Params("category"))
		key := c.Params("*")
		if cat != storage.CategoryThumbnail {
			if err := store.Verify(c.Query("token"), cat, key); err != nil {
				return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid or expired link!", nil)
			}
		}
		p, err := store.Path(cat, key)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
		}
		if _, err := os.Stat(p); err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
		}
		return c.SendFile(p)
	})
}
