package ports

import (
	"context"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// AuthService is the backend side of the auth endpoints.
type AuthService interface {
	Register(ctx context.Context, req domain.Registration) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	CurrentUser(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, req domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	ListUsers(ctx context.Context, page, pageSize int) (*domain.PageData[domain.Identity], error)
}
