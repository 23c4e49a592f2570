package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/pkg/token"
)

// Context keys set by Auth.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// Auth validates the bearer credential and injects its claims into the
// context. A missing or malformed header answers 2001; a token that fails
// verification answers 2002, which tells the client to drop its session.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	secret := []byte(jwtSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return &domain.BusinessError{Code: domain.CodeUnauthorized, Message: domain.ErrUnauthorized.Error()}
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return &domain.BusinessError{Code: domain.CodeUnauthorized, Message: "malformed authorization header"}
			}

			claims, err := token.Parse(secret, parts[1])
			if err != nil {
				return &domain.BusinessError{Code: domain.CodeTokenExpired, Message: token.ErrInvalid.Error()}
			}

			c.Set(KeyUserID, claims.UserID)
			c.Set(KeyUsername, claims.Username)
			c.Set(KeyRole, claims.Role)

			return next(c)
		}
	}
}

// UserID returns the id injected by Auth, or 0.
func UserID(c echo.Context) int64 {
	id, _ := c.Get(KeyUserID).(int64)
	return id
}
