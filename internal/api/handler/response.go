package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// Every reply is an envelope with HTTP 200; the outcome is in the code.

func success(c echo.Context, data any) error {
	return successMessage(c, "success", data)
}

func successMessage(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, domain.Envelope[any]{
		Code:    domain.CodeSuccess,
		Message: message,
		Data:    data,
	})
}
