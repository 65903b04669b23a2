package account

import "context"

// Usecase defines the interface for account business logic.
type Usecase interface {
	Profile(ctx context.Context, userID int64) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*ProfileResponse, error)
	SetOpenAIKey(ctx context.Context, in SetOpenAIKeyRequest) error
	Dashboard(ctx context.Context, userID int64) (*DashboardResponse, error)
}
