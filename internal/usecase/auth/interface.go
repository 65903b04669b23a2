package auth

import "context"

// Usecase defines the interface for authentication business logic.
type Usecase interface {
	Register(ctx context.Context, in RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, in LoginRequest) (*SessionResponse, error)
	OAuthLogin(ctx context.Context, in OAuthLoginRequest) (*SessionResponse, error)
	ForgotPassword(ctx context.Context, in ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, in ResetPasswordRequest) error
	ChangePassword(ctx context.Context, in ChangePasswordRequest) error
}
