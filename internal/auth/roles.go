package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inquiry-service/internal/domain"
	"github.com/spec-kit/inquiry-service/pkg/util/errorutil"
)

// RequireStudent ensures a student is authenticated.
func RequireStudent() fiber.Handler {
	return requireRole(domain.RoleStudent, "student access required")
}

// RequireAdmin ensures an admin is authenticated.
func RequireAdmin() fiber.Handler {
	return requireRole(domain.RoleAdmin, "admin access required")
}

func requireRole(role domain.Role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return errorutil.NewUnauthorized("authentication required")
		}
		if principal.User.Role != role {
			return errorutil.NewForbidden(message)
		}
		return c.Next()
	}
}
