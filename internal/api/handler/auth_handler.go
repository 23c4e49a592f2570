package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login authenticates by username or email and returns a bearer token.
//
//	POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req domain.LoginRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return paramError("username and password are required")
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrAccountDisabled) {
			return &domain.BusinessError{Code: domain.CodeUnauthorized, Message: err.Error()}
		}
		return err
	}

	return success(c, loginResponse{Token: token, User: user})
}

// Register creates an account. It does not log in.
//
//	POST /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req domain.Registration
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if _, err := h.authService.Register(c.Request().Context(), req); err != nil {
		if isConflict(err) {
			return paramError(err.Error())
		}
		return err
	}

	return successMessage(c, "registered", nil)
}

// Logout always succeeds; credentials are stateless.
//
//	POST /auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	return successMessage(c, "logged out", nil)
}

// CurrentUser returns the caller's identity.
//
//	GET /users/me
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return success(c, user)
}

// UpdateProfile applies a partial profile update.
//
//	PUT /users/me
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req domain.ProfileUpdate
	if err := bindValid(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return success(c, user)
}

// ChangePassword replaces the caller's password.
//
//	PUT /users/me/password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req domain.PasswordChange
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrWrongPassword) {
			return paramError(err.Error())
		}
		return err
	}
	return successMessage(c, "password changed", nil)
}

// ListUsers returns one page of accounts. Admin only.
//
//	GET /users?page=1&page_size=20
func (h *AuthHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	data, err := h.authService.ListUsers(c.Request().Context(), page, pageSize)
	if err != nil {
		return err
	}
	return success(c, data)
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrEmailExists)
}
