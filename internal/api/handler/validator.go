package handler

import (
	"github.com/FruitsAI/orange-client/internal/pkg/validation"
)

// echoValidator lets Echo call c.Validate(req) with the shared rules and
// messages used by the client.
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return validation.Struct(i)
}
