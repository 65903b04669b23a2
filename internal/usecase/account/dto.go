package account

import "time"

// ProfileResponse is the account owner's view of their profile.
type ProfileResponse struct {
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

// UpdateProfileRequest changes the editable profile fields.
type UpdateProfileRequest struct {
	UserID    int64
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Company   string `json:"company" validate:"max=200"`
}

// SetOpenAIKeyRequest stores or clears the user's own OpenAI API key.
// An empty key clears it.
type SetOpenAIKeyRequest struct {
	UserID int64
	APIKey string `json:"api_key" validate:"omitempty,min=20,max=200"`
}

// UsageSummary reports a quota and its consumption this month.
type UsageSummary struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`     // -1 when unlimited
	Remaining int `json:"remaining"` // -1 when unlimited
}

// RecentDownload is one entry of the dashboard download feed.
type RecentDownload struct {
	TemplateID   int64     `json:"template_id"`
	TemplateName string    `json:"template_name,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// DashboardResponse is the account overview.
type DashboardResponse struct {
	Tier                  string           `json:"tier"`
	SubscriptionStatus    string           `json:"subscription_status"`
	SubscriptionExpiresAt *time.Time       `json:"subscription_expires_at,omitempty"`
	Downloads             UsageSummary     `json:"downloads"`
	AIGenerations         UsageSummary     `json:"ai_generations"`
	FavoritesCount        int              `json:"favorites_count"`
	RecentDownloads       []RecentDownload `json:"recent_downloads"`
}
