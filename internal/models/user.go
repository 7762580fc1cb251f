package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User is a booking-desk agent account. Passwords are bcrypt hashes;
// the plain text never leaves the login handler.
type User struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	Username     string         `json:"username" db:"username"`
	PasswordHash string         `json:"-" db:"password_hash"`
	FullName     string         `json:"full_name" db:"full_name"`
	Roles        pq.StringArray `json:"roles" db:"roles"`
	Active       bool           `json:"active" db:"active"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// LoginRequest is the agent login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued tokens.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}
