package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// UserRepoPG implements the user repository interfaces using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

func userToSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:                    u.ID,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		Company:               u.Company,
		Tier:                  u.Tier,
		SubscriptionStatus:    u.SubscriptionStatus,
		SubscriptionExpiresAt: u.SubscriptionExpiresAt,
		StripeCustomerID:      u.StripeCustomerID,
		DownloadsUsed:         u.DownloadsUsed,
		AIGenerationsUsed:     u.AIGenerationsUsed,
		LastUsageReset:        u.LastUsageReset,
		OAuthProvider:         u.OAuthProvider,
		OAuthID:               u.OAuthID,
		EmailVerified:         u.EmailVerified,
		OpenAIAPIKey:          u.OpenAIAPIKey,
		ResetToken:            u.ResetToken,
		ResetTokenExpires:     u.ResetTokenExpires,
		CreatedAt:             u.CreatedAt,
		LastLogin:             u.LastLogin,
	}
}

func schemaToUser(m *UserSchema) *user.User {
	return &user.User{
		ID:                    m.ID,
		Email:                 m.Email,
		PasswordHash:          m.PasswordHash,
		FirstName:             m.FirstName,
		LastName:              m.LastName,
		Company:               m.Company,
		Tier:                  m.Tier,
		SubscriptionStatus:    m.SubscriptionStatus,
		SubscriptionExpiresAt: m.SubscriptionExpiresAt,
		StripeCustomerID:      m.StripeCustomerID,
		DownloadsUsed:         m.DownloadsUsed,
		AIGenerationsUsed:     m.AIGenerationsUsed,
		LastUsageReset:        m.LastUsageReset,
		OAuthProvider:         m.OAuthProvider,
		OAuthID:               m.OAuthID,
		EmailVerified:         m.EmailVerified,
		OpenAIAPIKey:          m.OpenAIAPIKey,
		ResetToken:            m.ResetToken,
		ResetTokenExpires:     m.ResetTokenExpires,
		CreatedAt:             m.CreatedAt,
		LastLogin:             m.LastLogin,
	}
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := userToSchema(u)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	if model.LastUsageReset.IsZero() {
		model.LastUsageReset = model.CreatedAt
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.LastUsageReset = model.LastUsageReset
	return model.ID, nil
}

// Update writes the full user row back to the database.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	model := userToSchema(u)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return schemaToUser(&model), nil
}

// GetByEmail retrieves a user by email address. Returns (nil, nil) when
// no account exists, so callers can branch without unwrapping errors.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return schemaToUser(&model), nil
}

// GetByOAuth retrieves a user by OAuth provider identity.
func (r *UserRepoPG) GetByOAuth(ctx context.Context, provider, oauthID string) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).
		Where("oauth_provider = ? AND oauth_id = ?", provider, oauthID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get user by oauth identity", zap.Error(err), zap.String("provider", provider))
		return nil, fmt.Errorf("failed to get user by oauth identity: %w", err)
	}

	return schemaToUser(&model), nil
}

// GetByResetToken retrieves a user holding an outstanding password reset token.
func (r *UserRepoPG) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("reset_token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("reset token", "invalid or expired reset token")
		}
		r.log.Error("failed to get user by reset token", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return schemaToUser(&model), nil
}

// GetByStripeCustomerID retrieves the user owning a Stripe customer record.
func (r *UserRepoPG) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get user by stripe customer", zap.Error(err), zap.String("customer_id", customerID))
		return nil, fmt.Errorf("failed to get user by stripe customer: %w", err)
	}

	return schemaToUser(&model), nil
}
