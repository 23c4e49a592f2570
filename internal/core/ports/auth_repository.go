package ports

import (
	"context"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// UserRepository persists backend accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// FindByCredential looks a user up by username or email.
	FindByCredential(ctx context.Context, login string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	// List returns one page of accounts ordered by id, plus the total count.
	List(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error)
}
