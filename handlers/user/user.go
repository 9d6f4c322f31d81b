package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

// UserHandler handles user listings
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListNonAdminUsers(c.UserContext())
	if err != nil {
		log.Errorw("failed to list users", "error", err)
		return response.InternalServerError(c, "Failed to fetch users")
	}
	return response.Success(c, fiber.Map{"users": users})
}
