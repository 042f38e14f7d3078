package model

import "time"

const AuthProviderManual = "manual"

// User is an authenticated principal. Every user may create and delete their own events.
type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	AuthProvider string    `json:"authProvider" db:"auth_provider"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthStatus is the body of GET /api/auth-status.
type AuthStatus struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            string `json:"user,omitempty"`
}
