package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// UserRepository keeps accounts in a map keyed by id. Username lookups are
// case-sensitive; email lookups are not.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*domain.User), nextID: 1}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.nextID++
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByCredential(_ context.Context, login string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == login || (u.Email != "" && strings.EqualFold(u.Email, login)) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.LastLoginTime != nil {
		t := *u.LastLoginTime
		c.LastLoginTime = &t
	}
	return &c
}

func (r *UserRepository) List(_ context.Context, page, pageSize int) ([]*domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	start := (page - 1) * pageSize
	if start < 0 || start >= len(ids) {
		return nil, total, nil
	}
	end := min(start+pageSize, len(ids))

	out := make([]*domain.User, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, cloneUser(r.users[id]))
	}
	return out, total, nil
}
