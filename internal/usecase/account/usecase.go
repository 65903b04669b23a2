package account

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pmblueprints/internal/domain/activity"
	"pmblueprints/internal/domain/template"
	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// UserRepository defines the user data access the account flows need.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// ActivityRepository feeds the dashboard.
type ActivityRepository interface {
	RecentDownloads(ctx context.Context, userID, limit int64) ([]activity.Download, error)
	FavoriteTemplateIDs(ctx context.Context, userID int64) ([]int64, error)
}

// TemplateRepository resolves template names for the dashboard feed.
type TemplateRepository interface {
	GetByID(ctx context.Context, id int64) (*template.Template, error)
}

const recentDownloadsLimit = 5

// Service implements the account business logic.
type Service struct {
	users     UserRepository
	activity  ActivityRepository
	templates TemplateRepository
	log       *zap.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// New creates an account Service.
func New(users UserRepository, activity ActivityRepository, templates TemplateRepository, log *zap.Logger) *Service {
	return &Service{
		users:     users,
		activity:  activity,
		templates: templates,
		log:       log,
		validate:  validator.New(),
		now:       time.Now,
	}
}

func profileOf(u *user.User) *ProfileResponse {
	return &ProfileResponse{
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

// Profile returns the account owner's profile.
func (s *Service) Profile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileOf(u), nil
}

// UpdateProfile changes the editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*ProfileResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Company = strings.TrimSpace(in.Company)
	if err := s.users.Update(ctx, u); err != nil {
		s.log.Error("failed to update profile", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	s.log.Info("profile updated", zap.Int64("user_id", u.ID))
	return profileOf(u), nil
}

// SetOpenAIKey stores or clears the user's own OpenAI API key.
// Generations with an own key do not consume the platform AI quota.
func (s *Service) SetOpenAIKey(ctx context.Context, in SetOpenAIKeyRequest) error {
	if err := s.validate.Struct(in); err != nil {
		return apperrors.NewValidationError("api_key", "api key must be between 20 and 200 characters")
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	u.OpenAIAPIKey = strings.TrimSpace(in.APIKey)
	if err := s.users.Update(ctx, u); err != nil {
		s.log.Error("failed to store openai key", zap.Int64("user_id", u.ID), zap.Error(err))
		return err
	}

	s.log.Info("openai key updated",
		zap.Int64("user_id", u.ID), zap.Bool("cleared", u.OpenAIAPIKey == ""))
	return nil
}

func remaining(limit, used int) int {
	if limit == user.Unlimited {
		return user.Unlimited
	}
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}

// Dashboard returns the account overview with quota state and recent
// activity. Counters roll over lazily when the calendar month changed.
func (s *Service) Dashboard(ctx context.Context, userID int64) (*DashboardResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if u.NeedsUsageReset(now) {
		u.ResetUsage(now)
		if err := s.users.Update(ctx, u); err != nil {
			s.log.Warn("failed to persist usage rollover", zap.Int64("user_id", u.ID), zap.Error(err))
		}
	}

	favorites, err := s.activity.FavoriteTemplateIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.activity.RecentDownloads(ctx, userID, recentDownloadsLimit)
	if err != nil {
		return nil, err
	}

	recent := make([]RecentDownload, 0, len(records))
	for _, r := range records {
		entry := RecentDownload{TemplateID: r.TemplateID, DownloadedAt: r.DownloadedAt}
		if t, err := s.templates.GetByID(ctx, r.TemplateID); err == nil {
			entry.TemplateName = t.Name
		} else {
			s.log.Warn("failed to resolve downloaded template",
				zap.Int64("template_id", r.TemplateID), zap.Error(err))
		}
		recent = append(recent, entry)
	}

	return &DashboardResponse{
		Tier:                  u.Tier,
		SubscriptionStatus:    u.SubscriptionStatus,
		SubscriptionExpiresAt: u.SubscriptionExpiresAt,
		Downloads: UsageSummary{
			Used:      u.DownloadsUsed,
			Limit:     u.DownloadLimit(),
			Remaining: remaining(u.DownloadLimit(), u.DownloadsUsed),
		},
		AIGenerations: UsageSummary{
			Used:      u.AIGenerationsUsed,
			Limit:     u.AIGenerationLimit(),
			Remaining: remaining(u.AIGenerationLimit(), u.AIGenerationsUsed),
		},
		FavoritesCount:  len(favorites),
		RecentDownloads: recent,
	}, nil
}
