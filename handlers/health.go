package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/database"
)

// HandleCheckHealth is the liveness check. It always answers 200; a failing
// database ping is only logged.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if store != nil {
		if err := store.HealthCheck(); err != nil {
			log.Warnw("health check: database unreachable", "error", err)
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "OK"})
}
