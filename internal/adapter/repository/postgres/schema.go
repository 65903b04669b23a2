package postgres

import (
	"time"

	"gorm.io/gorm"
)

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255"`
	FirstName    string `gorm:"size:50"`
	LastName     string `gorm:"size:50"`
	Company      string `gorm:"size:100"`

	Tier                  string `gorm:"size:20;not null;default:free"`
	SubscriptionStatus    string `gorm:"size:20;not null;default:active"`
	SubscriptionExpiresAt *time.Time
	StripeCustomerID      string `gorm:"size:100"`

	DownloadsUsed     int `gorm:"not null;default:0"`
	AIGenerationsUsed int `gorm:"column:ai_generations_used;not null;default:0"`
	LastUsageReset    time.Time

	OAuthProvider string `gorm:"column:oauth_provider;size:50"`
	OAuthID       string `gorm:"column:oauth_id;size:255"`
	EmailVerified bool   `gorm:"not null;default:false"`

	OpenAIAPIKey string `gorm:"column:openai_api_key;size:255"`

	ResetToken        string `gorm:"size:100;index"`
	ResetTokenExpires *time.Time

	CreatedAt time.Time
	LastLogin *time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string { return "users" }

// TemplateSchema represents the database schema for the templates table.
type TemplateSchema struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Industry    string `gorm:"size:100;index;not null"`
	Category    string `gorm:"size:100;index;not null"`
	FileFormat  string `gorm:"size:20;not null"`
	FileKey     string `gorm:"size:500"`
	PreviewKey  string `gorm:"size:500"`
	CDNURL      string `gorm:"column:cdn_url;size:500"`
	FileSize    int64
	Tags        string `gorm:"type:text"` // comma separated
	HasFormulas bool   `gorm:"not null;default:false"`
	IsPremium   bool   `gorm:"not null;default:false"`
	Downloads   int64  `gorm:"not null;default:0"`
	Rating      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for the TemplateSchema model.
func (TemplateSchema) TableName() string { return "templates" }

// DownloadSchema represents a row in download_history.
type DownloadSchema struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	UserID       int64 `gorm:"not null;index"`
	TemplateID   int64 `gorm:"not null;index"`
	DownloadedAt time.Time
}

// TableName specifies the table name for the DownloadSchema model.
func (DownloadSchema) TableName() string { return "download_history" }

// FavoriteSchema represents a row in favorites.
type FavoriteSchema struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	UserID     int64 `gorm:"not null;uniqueIndex:uniq_favorite"`
	TemplateID int64 `gorm:"not null;uniqueIndex:uniq_favorite"`
	CreatedAt  time.Time
}

// TableName specifies the table name for the FavoriteSchema model.
func (FavoriteSchema) TableName() string { return "favorites" }

// RatingSchema represents a row in template_ratings.
type RatingSchema struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	UserID     int64  `gorm:"not null;uniqueIndex:uniq_rating"`
	TemplateID int64  `gorm:"not null;uniqueIndex:uniq_rating"`
	Stars      int    `gorm:"not null"`
	Review     string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the RatingSchema model.
func (RatingSchema) TableName() string { return "template_ratings" }

// PaymentSchema represents a row in payments.
type PaymentSchema struct {
	ID                    int64  `gorm:"primaryKey;autoIncrement"`
	UserID                int64  `gorm:"not null;index"`
	StripePaymentIntentID string `gorm:"size:100;uniqueIndex"`
	Amount                int64  `gorm:"not null"`
	Currency              string `gorm:"size:3;not null;default:usd"`
	Status                string `gorm:"size:20;not null"`
	Tier                  string `gorm:"size:20"`
	TemplateID            *int64
	Description           string `gorm:"size:500"`
	CreatedAt             time.Time
}

// TableName specifies the table name for the PaymentSchema model.
func (PaymentSchema) TableName() string { return "payments" }

// PurchaseSchema represents a row in template_purchases.
type PurchaseSchema struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	UserID      int64 `gorm:"not null;uniqueIndex:uniq_purchase"`
	TemplateID  int64 `gorm:"not null;uniqueIndex:uniq_purchase"`
	PaymentID   int64
	PurchasedAt time.Time
}

// TableName specifies the table name for the PurchaseSchema model.
func (PurchaseSchema) TableName() string { return "template_purchases" }

// GenerationSchema represents a row in ai_generation_history.
type GenerationSchema struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	UserID       int64  `gorm:"not null;index"`
	ProjectName  string `gorm:"size:255"`
	ProjectType  string `gorm:"size:100"`
	Industry     string `gorm:"size:100"`
	Methodology  string `gorm:"size:50"`
	DocumentType string `gorm:"size:100"`
	FileFormat   string `gorm:"size:20"`
	Content      string `gorm:"type:text"`
	FileKey      string `gorm:"size:500"`
	CreatedAt    time.Time
}

// TableName specifies the table name for the GenerationSchema model.
func (GenerationSchema) TableName() string { return "ai_generation_history" }

// SuggestionSchema represents a row in ai_suggestion_history.
type SuggestionSchema struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement"`
	UserID             int64  `gorm:"not null;index"`
	ProjectDescription string `gorm:"type:text"`
	Industry           string `gorm:"size:100"`
	ProjectPhase       string `gorm:"size:100"`
	TeamSize           string `gorm:"size:50"`
	Suggestions        string `gorm:"type:text"`
	CreatedAt          time.Time
}

// TableName specifies the table name for the SuggestionSchema model.
func (SuggestionSchema) TableName() string { return "ai_suggestion_history" }

// ConnectionSchema represents a row in platform_connections.
type ConnectionSchema struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	UserID       int64  `gorm:"not null;uniqueIndex:uniq_connection"`
	Platform     string `gorm:"size:50;not null;uniqueIndex:uniq_connection"`
	AccessToken  string `gorm:"size:500"`
	RefreshToken string `gorm:"size:500"`
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the ConnectionSchema model.
func (ConnectionSchema) TableName() string { return "platform_connections" }

// Migrate creates or updates every table used by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserSchema{},
		&TemplateSchema{},
		&DownloadSchema{},
		&FavoriteSchema{},
		&RatingSchema{},
		&PaymentSchema{},
		&PurchaseSchema{},
		&GenerationSchema{},
		&SuggestionSchema{},
		&ConnectionSchema{},
	)
}
