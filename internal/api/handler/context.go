package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/FruitsAI/orange-client/internal/api/middleware"
	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// ctxUserID returns the caller injected by the Auth middleware. A zero id
// means the route was mounted without Auth; the caller is told to log in.
func ctxUserID(c echo.Context) (int64, error) {
	id := middleware.UserID(c)
	if id == 0 {
		return 0, &domain.BusinessError{Code: domain.CodeUnauthorized, Message: domain.ErrUnauthorized.Error()}
	}
	return id, nil
}

// bindValid decodes the JSON body into req and validates it. Both failures
// are parameter errors.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return paramError("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return paramError(err.Error())
	}
	return nil
}

func paramError(msg string) error {
	return &domain.BusinessError{Code: domain.CodeParamError, Message: msg}
}
