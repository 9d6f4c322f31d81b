package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

const identityKey = "identity"

// AuthMiddleware handles JWT authentication. It never touches the database;
// the identity comes from the verified token alone.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			return response.InvalidToken(c)
		}

		c.Locals(identityKey, claims.Identity())

		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles.
// It must run after Required.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetIdentity(c)
		if !ok || !identity.Role.Valid() {
			return response.Forbidden(c, "Unauthorized access")
		}

		for _, r := range roles {
			if identity.Role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Unauthorized access")
	}
}

// RequireAdmin is shorthand for RequireRole(model.RoleAdmin)
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return m.RequireRole(model.RoleAdmin)
}

// RequireInstructor is shorthand for RequireRole(model.RoleInstructor)
func (m *AuthMiddleware) RequireInstructor() fiber.Handler {
	return m.RequireRole(model.RoleInstructor)
}

// GetIdentity returns the authenticated caller attached by Required
func GetIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(auth.Identity)
	return identity, ok
}

// bearerToken extracts the token from "Bearer <token>"
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
