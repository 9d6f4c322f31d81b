package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/model"
	authutil "github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
	"github.com/sahilchouksey/noticeboard-api/utils/validation"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"omitempty,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty"`   // defaults to INSTRUCTOR
	Gender   string `json:"gender,omitempty"` // defaults to MALE
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = strings.ToLower(validation.SanitizeString(req.Email))
	req.Name = validation.SanitizeString(req.Name)

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.Describe(err))
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		return response.ValidationError(c, "role must be one of [ADMIN INSTRUCTOR]")
	}
	gender, err := model.ParseGender(req.Gender)
	if err != nil {
		return response.ValidationError(c, "gender must be one of [MALE FEMALE]")
	}

	if req.Name == "" {
		req.Name = strings.SplitN(req.Email, "@", 2)[0]
	}

	var existing int64
	if err := h.db.WithContext(c.UserContext()).Model(&model.User{}).
		Where("email = ?", req.Email).
		Count(&existing).Error; err != nil {
		return response.InternalServerError(c, "Failed to check email")
	}
	if existing > 0 {
		return response.Conflict(c, "Email already registered", response.CodeEmailExists)
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Gender:       gender,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return response.Conflict(c, "Email already registered", response.CodeEmailExists)
		}
		log.Errorw("failed to create user", "email", req.Email, "error", err)
		return response.InternalServerError(c, "Failed to create user")
	}

	if _, err := h.issueToken(c, &user); err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	log.Infof("registered %s user %d", user.Role, user.ID)
	return response.Created(c, "User registered successfully", fiber.Map{"user": newUserResponse(&user)})
}
