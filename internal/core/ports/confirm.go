package ports

import (
	"context"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// ConfirmSurface shows one question at a time and blocks until it is answered.
type ConfirmSurface interface {
	Prompt(ctx context.Context, req domain.ConfirmRequest) (bool, error)
}

// SurfaceFactory builds the confirmation surface on first use.
type SurfaceFactory func() (ConfirmSurface, error)
