package ports

import (
	"context"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// AuthAPI is the set of backend calls the session service issues.
type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error)
	Register(ctx context.Context, req domain.Registration) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.Identity, error)
	ChangePassword(ctx context.Context, req domain.PasswordChange) error
}
