package middleware

import (
	"goacademy/backend/config"
	"goacademy/backend/models"
	"goacademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware verifies the token and stashes the caller's identity and
// role in locals for the handlers downstream.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		c.Locals("userID", user.ID)
		c.Locals("role", user.Role)
		return c.Next()
	}
}

// RequireRole gates a route to the given roles. Admins always pass.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(models.Role)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if role == models.RoleAdmin {
			return c.Next()
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Not enough permissions")
	}
}

// CurrentUserID reads the authenticated user's ID set by AuthMiddleware.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// CurrentRole reads the authenticated user's role set by AuthMiddleware.
func CurrentRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals("role").(models.Role)
	return role
}
