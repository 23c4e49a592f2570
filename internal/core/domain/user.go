package domain

import "time"

// Role is the access role carried by an identity.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

const (
	StatusDisabled = 0
	StatusActive   = 1
)

// Identity is the user record the backend returns for the current session.
type Identity struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Avatar     string `json:"avatar"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Status     int    `json:"status"`
}

// Active reports whether the account may log in.
func (i Identity) Active() bool {
	return i.Status == StatusActive
}

// User is the backend-side account: an identity plus credentials and bookkeeping.
type User struct {
	Identity
	PasswordHash  string     `json:"-"`
	LastLoginTime *time.Time `json:"last_login_time"`
	CreatedAt     time.Time  `json:"create_time"`
	UpdatedAt     time.Time  `json:"update_time"`
}

// Registration carries the fields of a sign-up request.
type Registration struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileUpdate is a partial update; empty fields are left untouched.
type ProfileUpdate struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

// Empty reports whether the update carries no field.
func (p ProfileUpdate) Empty() bool {
	return p == ProfileUpdate{}
}

// LoginRequest is the payload of the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

// PasswordChange is the payload of the change-password endpoint.
type PasswordChange struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
