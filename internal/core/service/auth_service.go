package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
	"github.com/FruitsAI/orange-client/internal/pkg/token"
)

// AuthService implements the account endpoints of the stub backend.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates an active account with the user role. Username and email
// must be unique.
func (s *AuthService) Register(ctx context.Context, req domain.Registration) (*domain.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.repo.FindByCredential(ctx, req.Username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if req.Email != "" {
		exists, err := s.repo.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Identity: domain.Identity{
			Username: req.Username,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Role:     domain.RoleUser,
			Status:   domain.StatusActive,
		},
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login checks the password of the account found by username or email and
// mints a credential. Unknown accounts and wrong passwords are reported the
// same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByCredential(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.Active() {
		return "", nil, domain.ErrAccountDisabled
	}

	now := s.now()
	tok, err := token.Issue(s.jwtSecret, user.ID, user.Username, string(user.Role), s.tokenTTL, now)
	if err != nil {
		return "", nil, err
	}

	loginAt := now.UTC()
	user.LastLoginTime = &loginAt
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("last login time not recorded")
	}

	return tok, user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile applies the non-empty fields of req and returns the result.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Empty() {
		return user, nil
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Department != "" {
		user.Department = req.Department
	}
	if req.Position != "" {
		user.Position = req.Position
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, user)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListUsers returns one page of account identities.
func (s *AuthService) ListUsers(ctx context.Context, page, pageSize int) (*domain.PageData[domain.Identity], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	users, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	list := make([]domain.Identity, 0, len(users))
	for _, u := range users {
		list = append(list, u.Identity)
	}
	return &domain.PageData[domain.Identity]{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}

// SeedAdmin creates the admin account on an empty store. It is a no-op when
// any account exists or password is empty.
func (s *AuthService) SeedAdmin(ctx context.Context, password string) error {
	if password == "" {
		return nil
	}
	_, total, err := s.repo.List(ctx, 1, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	admin := &domain.User{
		Identity: domain.Identity{
			Username:   "admin",
			Name:       "Administrator",
			Email:      "admin@orange.com",
			Role:       domain.RoleAdmin,
			Department: "Engineering",
			Position:   "System Administrator",
			Status:     domain.StatusActive,
		},
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.repo.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info().Msg("admin account seeded")
	return nil
}
