package middleware

import (
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const principalKey = "principal"

// AdminRole holds every capability without explicit permission rows.
const AdminRole = "admin"

// LoadPrincipal resolves the user named by the "user_id" local, with role
// permissions, for the rest of the chain. auth.JWTProtected runs it once the
// token is verified. Inactive users are refused.
func LoadPrincipal(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.Preload("Role.Permissions").First(&user, userID).Error; err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !user.IsActive() {
			return response.Forbidden(c, "User account is not active")
		}

		c.Locals(principalKey, &user)
		return c.Next()
	}
}

// Principal returns the user stored by LoadPrincipal.
func Principal(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(principalKey).(*models.User)
	return user
}

// PermissionProtected rejects the request unless the principal holds action
// in module.
func PermissionProtected(module, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := Principal(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if user.Role == nil {
			return response.Forbidden(c, "User has no role assigned")
		}
		if !HasPermission(user, module, action) {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}
		return c.Next()
	}
}

func HasPermission(user *models.User, module, action string) bool {
	if user == nil || user.Role == nil {
		return false
	}
	if user.Role.Name == AdminRole {
		return true
	}
	for _, perm := range user.Role.Permissions {
		if perm.Module == module && perm.Action == action {
			return true
		}
	}
	return false
}

// RoleGate answers capability checks from the principal's role permissions.
type RoleGate struct{}

func (RoleGate) HasCapability(principal *models.User, capability string) bool {
	return HasPermission(principal, models.HubModule, capability)
}
