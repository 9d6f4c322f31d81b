package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/model"
	authutil "github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
	"github.com/sahilchouksey/noticeboard-api/utils/validation"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = strings.ToLower(validation.SanitizeString(req.Email))
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.Describe(err))
	}

	ip := c.IP()

	var user model.User
	if err := h.db.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		h.recordFailure(c, ip)
		return response.Unauthorized(c, "Invalid credentials")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.recordFailure(c, ip)
		return response.Unauthorized(c, "Invalid credentials")
	}

	if h.bruteForceProtection != nil {
		if err := h.bruteForceProtection.RecordSuccessfulAttempt(c.UserContext(), ip); err != nil {
			log.Warnw("failed to clear login attempts", "ip", ip, "error", err)
		}
	}

	token, err := h.issueToken(c, &user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.SuccessWithMessage(c, "Login successful", LoginResponse{
		User:  newUserResponse(&user),
		Token: token,
	})
}

func (h *AuthHandler) recordFailure(c *fiber.Ctx, ip string) {
	if h.bruteForceProtection == nil {
		return
	}
	if err := h.bruteForceProtection.RecordFailedAttempt(c.UserContext(), ip); err != nil {
		log.Warnw("failed to record login attempt", "ip", ip, "error", err)
	}
}
