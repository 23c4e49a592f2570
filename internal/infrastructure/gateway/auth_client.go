package gateway

import (
	"context"
	"net/url"
	"strconv"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/pkg/validation"
)

// Auth endpoint paths, relative to the API base URL.
const (
	PathLogin          = "/auth/login"
	PathRegister       = "/auth/register"
	PathLogout         = "/auth/logout"
	PathCurrentUser    = "/users/me"
	PathChangePassword = "/users/me/password"
	PathUsers          = "/users"
)

// AuthClient implements ports.AuthAPI over a Doer. Payloads are validated
// before dispatch; an invalid payload never reaches the network.
type AuthClient struct {
	d Doer
}

func NewAuthClient(d Doer) *AuthClient {
	return &AuthClient{d: d}
}

func (c *AuthClient) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	env, err := Post[domain.LoginResult](ctx, c.d, PathLogin, req)
	if err != nil {
		return nil, err
	}
	if env.Data.Token == "" {
		return nil, &domain.BusinessError{Code: domain.CodeInternalError, Message: "login response carried no token"}
	}
	if env.Data.User == nil {
		return nil, &domain.BusinessError{Code: domain.CodeInternalError, Message: "login response carried no user"}
	}
	return &env.Data, nil
}

func (c *AuthClient) Register(ctx context.Context, req domain.Registration) error {
	if err := validate(req); err != nil {
		return err
	}
	_, err := Post[struct{}](ctx, c.d, PathRegister, req)
	return err
}

func (c *AuthClient) Logout(ctx context.Context) error {
	_, err := Post[struct{}](ctx, c.d, PathLogout, nil)
	return err
}

func (c *AuthClient) CurrentUser(ctx context.Context) (*domain.Identity, error) {
	env, err := Get[domain.Identity](ctx, c.d, PathCurrentUser, nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *AuthClient) UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.Identity, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	env, err := Put[domain.Identity](ctx, c.d, PathCurrentUser, req)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *AuthClient) ChangePassword(ctx context.Context, req domain.PasswordChange) error {
	if err := validate(req); err != nil {
		return err
	}
	_, err := Put[struct{}](ctx, c.d, PathChangePassword, req)
	return err
}

// ListUsers fetches one page of accounts. The backend only serves it to
// administrators.
func (c *AuthClient) ListUsers(ctx context.Context, page, pageSize int) (*domain.PageData[domain.Identity], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	env, err := Get[domain.PageData[domain.Identity]](ctx, c.d, PathUsers, q)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func validate(v any) error {
	if err := validation.Struct(v); err != nil {
		return &domain.BusinessError{Code: domain.CodeParamError, Message: err.Error()}
	}
	return nil
}
