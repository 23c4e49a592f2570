package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// Role returns the role injected by Auth, or "".
func Role(c echo.Context) domain.Role {
	r, _ := c.Get(KeyRole).(string)
	return domain.Role(r)
}

// RequireRole answers 2003 unless the caller holds one of roles. Mount it
// after Auth; without claims every caller is refused.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !slices.Contains(roles, Role(c)) {
				return &domain.BusinessError{Code: domain.CodeForbidden, Message: "permission denied"}
			}
			return next(c)
		}
	}
}
