package auth

import (
	"slices"
	"strings"

	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/response"
	"github.com/Kyz7/hub/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// JWTProtected authenticates the bearer token and hands off to
// middleware.LoadPrincipal, so every protected route sees the user with
// role permissions already loaded.
func JWTProtected(db *gorm.DB) fiber.Handler {
	loadPrincipal := middleware.LoadPrincipal(db)

	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}
		token, ok := bearerToken(header)
		if !ok {
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Invalid token format", nil)
		}

		userID, err := utils.ParseJWT(token)
		if err != nil {
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", nil)
		}

		c.Locals("user_id", userID)
		return loadPrincipal(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

// RoleProtected admits principals whose role name is one of roles. It must
// run after JWTProtected.
func RoleProtected(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := middleware.Principal(c)
		if principal == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if principal.Role == nil || !slices.Contains(roles, principal.Role.Name) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}
