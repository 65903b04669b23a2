package auth

import "time"

// RegisterRequest represents the request payload for creating an account.
type RegisterRequest struct {
	Email     string `validate:"required,email,max=120"`
	Password  string `validate:"required,min=8,max=128"`
	FirstName string `validate:"max=50"`
	LastName  string `validate:"max=50"`
	Company   string `validate:"max=100"`
}

// LoginRequest represents the request payload for password login.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// UserView is the account shape returned to clients.
type UserView struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Company            string     `json:"company,omitempty"`
	Tier               string     `json:"tier"`
	SubscriptionStatus string     `json:"subscription_status"`
	EmailVerified      bool       `json:"email_verified"`
	HasOpenAIKey       bool       `json:"has_openai_key"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// SessionResponse carries a signed token plus the account it belongs to.
type SessionResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// OAuthLoginRequest carries a verified identity from an OAuth provider.
type OAuthLoginRequest struct {
	Provider  string `validate:"required"`
	OAuthID   string `validate:"required"`
	Email     string `validate:"required,email"`
	FirstName string
	LastName  string
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `validate:"required"`
	NewPassword string `validate:"required,min=8,max=128"`
}

// ChangePasswordRequest rotates the password of a logged-in user.
type ChangePasswordRequest struct {
	UserID          int64
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8,max=128"`
}
