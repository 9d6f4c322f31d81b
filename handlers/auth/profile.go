package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

// GetProfile handles GET /api/auth/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var user model.User
	if err := h.db.WithContext(c.UserContext()).First(&user, identity.ID).Error; err != nil {
		if database.IsNotFound(err) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, fiber.Map{"user": newUserResponse(&user)})
}

// AdminOnly handles GET /api/auth/admin-only
func (h *AuthHandler) AdminOnly(c *fiber.Ctx) error {
	identity, _ := middleware.GetIdentity(c)
	return response.SuccessWithMessage(c, "Admin access granted", fiber.Map{"user": identity})
}
