package query

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive integer route parameter
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}
