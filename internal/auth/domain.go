package auth

import (
	"errors"
	"time"
)

// User is an account allowed to sign in.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the Postgres record of a login, kept alongside the Redis token
// for audit. TokenHash is a fingerprint of the bearer token, never the token.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

var (
	// ErrInvalidCredentials is returned for unknown users, inactive accounts
	// and wrong passwords alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrTokenNotFound indicates the bearer token is unknown or expired.
	ErrTokenNotFound = errors.New("auth: token not found")
)
