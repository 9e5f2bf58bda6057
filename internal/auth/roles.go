package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// RequireAdmin ensures the caller holds the administrator capability.
// Resolve and reopen are refused without it.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Role != RoleAdmin {
			return apperrors.NewForbidden("administrator capability required")
		}
		return c.Next()
	}
}
