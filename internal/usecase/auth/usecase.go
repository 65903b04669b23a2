package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
	"pmblueprints/pkg/security"
)

// Repository defines the user data access the auth flows need.
type Repository interface {
	Create(ctx context.Context, u *user.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByOAuth(ctx context.Context, provider, oauthID string) (*user.User, error)
	GetByResetToken(ctx context.Context, token string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int64, email, tier string) (string, error)
}

// Service implements the authentication business logic.
type Service struct {
	repo          Repository
	tokens        TokenIssuer
	resetTokenTTL time.Duration
	log           *zap.Logger
	validate      *validator.Validate
	now           func() time.Time
}

// New creates an auth Service.
func New(repo Repository, tokens TokenIssuer, resetTokenTTL time.Duration, log *zap.Logger) *Service {
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &Service{
		repo:          repo,
		tokens:        tokens,
		resetTokenTTL: resetTokenTTL,
		log:           log,
		validate:      validator.New(),
		now:           time.Now,
	}
}

func viewOf(u *user.User) UserView {
	return UserView{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Company:            u.Company,
		Tier:               u.Tier,
		SubscriptionStatus: u.SubscriptionStatus,
		EmailVerified:      u.EmailVerified,
		HasOpenAIKey:       u.HasOpenAIKey(),
		CreatedAt:          u.CreatedAt,
		LastLogin:          u.LastLogin,
	}
}

func (s *Service) session(u *user.User) (*SessionResponse, error) {
	token, err := s.tokens.Issue(u.ID, u.Email, u.Tier)
	if err != nil {
		s.log.Error("failed to issue token", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &SessionResponse{Token: token, User: viewOf(u)}, nil
}

// Register creates an account on the free tier and opens a session.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*SessionResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}
	if err := security.ValidatePassword(in.Password); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.log.Error("failed to check existing email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		s.log.Warn("email already registered", zap.String("email", email))
		return nil, apperrors.NewAlreadyExistsError("account", "an account with this email already exists")
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &user.User{
		Email:              email,
		PasswordHash:       hash,
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Company:            strings.TrimSpace(in.Company),
		Tier:               user.TierFree,
		SubscriptionStatus: user.StatusActive,
		LastUsageReset:     now,
		CreatedAt:          now,
	}

	if _, err := s.repo.Create(ctx, u); err != nil {
		s.log.Error("failed to create account", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.log.Info("account registered", zap.Int64("user_id", u.ID), zap.String("email", email))
	return s.session(u)
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*SessionResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, in.Password) {
		s.log.Warn("login rejected", zap.String("email", email))
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	now := s.now().UTC()
	u.LastLogin = &now
	if u.NeedsUsageReset(now) {
		u.ResetUsage(now)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		s.log.Warn("failed to stamp last login", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	s.log.Info("login succeeded", zap.Int64("user_id", u.ID))
	return s.session(u)
}

// OAuthLogin opens a session for a verified provider identity. The
// account is looked up by provider identity first, then linked by email,
// and created on the free tier when neither exists.
func (s *Service) OAuthLogin(ctx context.Context, in OAuthLoginRequest) (*SessionResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}

	u, err := s.repo.GetByOAuth(ctx, in.Provider, in.OAuthID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if u == nil {
		u, err = s.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if u != nil {
			// Existing password account: link the provider identity.
			u.OAuthProvider = in.Provider
			u.OAuthID = in.OAuthID
			u.EmailVerified = true
		}
	}

	now := s.now().UTC()
	if u == nil {
		u = &user.User{
			Email:              email,
			FirstName:          strings.TrimSpace(in.FirstName),
			LastName:           strings.TrimSpace(in.LastName),
			Tier:               user.TierFree,
			SubscriptionStatus: user.StatusActive,
			OAuthProvider:      in.Provider,
			OAuthID:            in.OAuthID,
			EmailVerified:      true,
			LastUsageReset:     now,
			CreatedAt:          now,
		}
		if _, err := s.repo.Create(ctx, u); err != nil {
			s.log.Error("failed to create oauth account", zap.String("email", email), zap.Error(err))
			return nil, err
		}
		s.log.Info("oauth account created", zap.Int64("user_id", u.ID), zap.String("provider", in.Provider))
	}

	u.LastLogin = &now
	if u.NeedsUsageReset(now) {
		u.ResetUsage(now)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		s.log.Warn("failed to update oauth login state", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	return s.session(u)
}

// ForgotPassword stores a reset token for the account. The response is
// identical whether or not the email exists, so account presence is not
// leaked.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotPasswordRequest) error {
	if err := s.validate.Struct(in); err != nil {
		return apperrors.NewValidationError("", err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		s.log.Debug("password reset requested for unknown email", zap.String("email", email))
		return nil
	}

	expires := s.now().UTC().Add(s.resetTokenTTL)
	u.ResetToken = uuid.NewString()
	u.ResetTokenExpires = &expires
	if err := s.repo.Update(ctx, u); err != nil {
		s.log.Error("failed to store reset token", zap.Int64("user_id", u.ID), zap.Error(err))
		return err
	}

	// The token is delivered out of band; it never appears in responses.
	s.log.Info("password reset token issued", zap.Int64("user_id", u.ID))
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordRequest) error {
	if err := s.validate.Struct(in); err != nil {
		return apperrors.NewValidationError("", err.Error())
	}
	if err := security.ValidatePassword(in.NewPassword); err != nil {
		return apperrors.NewValidationError("new_password", err.Error())
	}

	u, err := s.repo.GetByResetToken(ctx, in.Token)
	if err != nil {
		return err
	}
	if u.ResetTokenExpires == nil || u.ResetTokenExpires.Before(s.now()) {
		return apperrors.NewUnauthorizedError("reset token has expired")
	}

	hash, err := security.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	u.PasswordHash = hash
	u.ResetToken = ""
	u.ResetTokenExpires = nil
	if err := s.repo.Update(ctx, u); err != nil {
		s.log.Error("failed to reset password", zap.Int64("user_id", u.ID), zap.Error(err))
		return err
	}

	s.log.Info("password reset completed", zap.Int64("user_id", u.ID))
	return nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, in ChangePasswordRequest) error {
	if err := s.validate.Struct(in); err != nil {
		return apperrors.NewValidationError("", err.Error())
	}
	if err := security.ValidatePassword(in.NewPassword); err != nil {
		return apperrors.NewValidationError("new_password", err.Error())
	}

	u, err := s.repo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return apperrors.NewUnauthorizedError("current password is incorrect")
	}

	hash, err := security.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.repo.Update(ctx, u); err != nil {
		s.log.Error("failed to change password", zap.Int64("user_id", u.ID), zap.Error(err))
		return err
	}

	s.log.Info("password changed", zap.Int64("user_id", u.ID))
	return nil
}
