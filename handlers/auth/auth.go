package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/noticeboard-api/model"
	authutil "github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
	"github.com/sahilchouksey/noticeboard-api/utils/validation"
	"gorm.io/gorm"
)

const tokenCookie = "token"

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
	secureCookies        bool
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
		secureCookies:        secureCookies,
	}
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID            uint         `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Role          model.Role   `json:"role"`
	Gender        model.Gender `json:"gender"`
	EmailVerified bool         `json:"emailVerified"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Gender:        u.Gender,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// issueToken signs a token for u and mirrors it into an httpOnly cookie
func (h *AuthHandler) issueToken(c *fiber.Ctx, u *model.User) (string, error) {
	token, err := h.jwtManager.GenerateToken(authutil.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return "", err
	}

	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.jwtManager.Expiry()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}
