package download

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/domain/activity"
	"pmblueprints/internal/domain/template"
	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// UserRepository defines the user data access the download flow needs.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// TemplateRepository defines the template data access the download
// flow needs.
type TemplateRepository interface {
	GetByID(ctx context.Context, id int64) (*template.Template, error)
	IncrementDownloads(ctx context.Context, id int64) error
}

// ActivityRepository records download history.
type ActivityRepository interface {
	RecordDownload(ctx context.Context, userID, templateID int64) error
	RecentDownloads(ctx context.Context, userID, limit int64) ([]activity.Download, error)
}

// PurchaseChecker reports a-la-carte template ownership.
type PurchaseChecker interface {
	HasPurchase(ctx context.Context, userID, templateID int64) (bool, error)
}

// DownloadRecord is one entry of a user's download history.
type DownloadRecord struct {
	TemplateID   int64     `json:"template_id"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Request identifies the template a user wants to download.
type Request struct {
	UserID     int64
	TemplateID int64
}

// Response carries the time-limited download URL.
type Response struct {
	URL                string `json:"url"`
	FileName           string `json:"file_name"`
	DownloadsRemaining int    `json:"downloads_remaining"` // -1 when unlimited
}

// HistoryResponse lists a user's recent downloads.
type HistoryResponse struct {
	Downloads []DownloadRecord `json:"downloads"`
}

// Usecase defines the interface for download business logic.
type Usecase interface {
	Download(ctx context.Context, in Request) (*Response, error)
	History(ctx context.Context, userID int64) (*HistoryResponse, error)
}

// Service implements the download business logic: premium gating,
// monthly quota enforcement and presigned URL issuing.
type Service struct {
	users      UserRepository
	templates  TemplateRepository
	activity   ActivityRepository
	purchases  PurchaseChecker
	store      storage.Service
	presignTTL time.Duration
	log        *zap.Logger
	now        func() time.Time
}

// New creates a download Service.
func New(users UserRepository, templates TemplateRepository, activity ActivityRepository,
	purchases PurchaseChecker, store storage.Service, presignTTL time.Duration, log *zap.Logger) *Service {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &Service{
		users:      users,
		templates:  templates,
		activity:   activity,
		purchases:  purchases,
		store:      store,
		presignTTL: presignTTL,
		log:        log,
		now:        time.Now,
	}
}

const historyLimit = 20

// Download authorizes and issues a presigned URL for a template file.
// A purchased template downloads without consuming quota; otherwise
// the monthly counter is consumed, after a lazy rollover when the
// calendar month changed.
func (s *Service) Download(ctx context.Context, in Request) (*Response, error) {
	if in.TemplateID <= 0 {
		return nil, apperrors.NewValidationError("template_id", "invalid template id")
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	t, err := s.templates.GetByID(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if t.FileKey == "" {
		s.log.Warn("template has no stored file", zap.Int64("template_id", t.ID))
		return nil, apperrors.NewNotFoundError("template file", "template file is not available")
	}

	now := s.now().UTC()
	if u.NeedsUsageReset(now) {
		u.ResetUsage(now)
	}

	purchased, err := s.purchases.HasPurchase(ctx, u.ID, t.ID)
	if err != nil {
		return nil, err
	}

	if !purchased {
		paid := u.IsPaid() && !u.SubscriptionExpired(now)
		if t.IsPremium && !paid {
			return nil, apperrors.NewPermissionDeniedError(
				"this template requires a subscription or a one-time purchase")
		}
		if !u.CanDownload() {
			s.log.Info("download quota exhausted",
				zap.Int64("user_id", u.ID), zap.String("tier", u.Tier))
			return nil, apperrors.NewQuotaExceededError("download",
				fmt.Sprintf("monthly download limit reached (%d)", u.DownloadLimit()))
		}
		if u.DownloadLimit() != user.Unlimited {
			u.DownloadsUsed++
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		s.log.Error("failed to persist usage counters", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	if err := s.activity.RecordDownload(ctx, u.ID, t.ID); err != nil {
		s.log.Warn("failed to record download history", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	if err := s.templates.IncrementDownloads(ctx, t.ID); err != nil {
		s.log.Warn("failed to bump template download counter", zap.Int64("template_id", t.ID), zap.Error(err))
	}

	url, err := s.store.PresignDownload(ctx, t.FileKey, s.presignTTL)
	if err != nil {
		return nil, err
	}

	s.log.Info("download authorized",
		zap.Int64("user_id", u.ID),
		zap.Int64("template_id", t.ID),
		zap.Bool("purchased", purchased))

	return &Response{
		URL:                url,
		FileName:           template.SafeName(t.Name) + "." + t.FileFormat,
		DownloadsRemaining: u.DownloadsRemaining(),
	}, nil
}

// History returns the user's recent downloads.
func (s *Service) History(ctx context.Context, userID int64) (*HistoryResponse, error) {
	records, err := s.activity.RecentDownloads(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	downloads := make([]DownloadRecord, len(records))
	for i, r := range records {
		downloads[i] = DownloadRecord{TemplateID: r.TemplateID, DownloadedAt: r.DownloadedAt}
	}
	return &HistoryResponse{Downloads: downloads}, nil
}
