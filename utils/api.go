package utils

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/noticeboard-api/database"
)

// MakeHTTPHandleFunc binds a store-aware handler to a fiber route. Errors go
// to the app's error handler, which decides how much of them the client sees.
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return handler(c, store)
	}
}
