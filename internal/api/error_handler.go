package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that renders every
// failure as an envelope with HTTP 200 and the matching code:
//   - business errors keep their code and message;
//   - known domain errors map to deterministic codes;
//   - anything else is logged and reported as a generic internal error.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(http.StatusOK, domain.Envelope[any]{Code: code, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var be *domain.BusinessError
	if errors.As(err, &be) {
		return be.Code, be.Message
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		switch {
		case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
			return domain.CodeNotFound, msg
		case he.Code == http.StatusUnauthorized:
			return domain.CodeUnauthorized, msg
		case he.Code == http.StatusForbidden:
			return domain.CodeForbidden, msg
		case he.Code < http.StatusInternalServerError:
			return domain.CodeParamError, msg
		}
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return domain.CodeNotFound, domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAccountDisabled),
		errors.Is(err, domain.ErrUnauthorized):
		return domain.CodeUnauthorized, err.Error()
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrEmailExists),
		errors.Is(err, domain.ErrWrongPassword):
		return domain.CodeParamError, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return domain.CodeInternalError, "internal server error"
}
