package download

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/domain/activity"
	"pmblueprints/internal/domain/template"
	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockTemplateRepository is a mock implementation of TemplateRepository.
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, id int64) (*template.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*template.Template), args.Error(1)
}

func (m *MockTemplateRepository) IncrementDownloads(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockActivityRepository is a mock implementation of ActivityRepository.
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) RecordDownload(ctx context.Context, userID, templateID int64) error {
	args := m.Called(ctx, userID, templateID)
	return args.Error(0)
}

func (m *MockActivityRepository) RecentDownloads(ctx context.Context, userID, limit int64) ([]activity.Download, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Download), args.Error(1)
}

// MockPurchaseChecker is a mock implementation of PurchaseChecker.
type MockPurchaseChecker struct {
	mock.Mock
}

func (m *MockPurchaseChecker) HasPurchase(ctx context.Context, userID, templateID int64) (bool, error) {
	args := m.Called(ctx, userID, templateID)
	return args.Bool(0), args.Error(1)
}

// MockStorage is a mock implementation of storage.Service.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) (int64, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type testMocks struct {
	users     *MockUserRepository
	templates *MockTemplateRepository
	activity  *MockActivityRepository
	purchases *MockPurchaseChecker
	store     *MockStorage
}

func setupTestUsecase(t *testing.T) (*Service, *testMocks) {
	m := &testMocks{
		users:     new(MockUserRepository),
		templates: new(MockTemplateRepository),
		activity:  new(MockActivityRepository),
		purchases: new(MockPurchaseChecker),
		store:     new(MockStorage),
	}
	uc := New(m.users, m.templates, m.activity, m.purchases, m.store, 15*time.Minute, zaptest.NewLogger(t))
	return uc, m
}

func freeUser(id int64) *user.User {
	return &user.User{
		ID:             id,
		Email:          "user@example.com",
		Tier:           user.TierFree,
		LastUsageReset: time.Now().UTC(),
	}
}

func xlsxTemplate(id int64) *template.Template {
	return &template.Template{
		ID:         id,
		Name:       "Project Charter",
		FileFormat: template.FormatXLSX,
		FileKey:    "templates/Project_Charter.xlsx",
	}
}

// ==================== DOWNLOAD TESTS ====================

func TestDownload_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	tpl := xlsxTemplate(2)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.activity.On("RecordDownload", ctx, int64(1), int64(2)).Return(nil)
	m.templates.On("IncrementDownloads", ctx, int64(2)).Return(nil)
	m.store.On("PresignDownload", ctx, tpl.FileKey, 15*time.Minute).Return("https://cdn/signed", nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/signed", resp.URL)
	assert.Equal(t, "Project_Charter.xlsx", resp.FileName)
	assert.Equal(t, 2, resp.DownloadsRemaining)
	assert.Equal(t, 1, u.DownloadsUsed)
	m.users.AssertExpectations(t)
	m.store.AssertExpectations(t)
}

func TestDownload_InvalidTemplateID(t *testing.T) {
	uc, _ := setupTestUsecase(t)

	resp, err := uc.Download(context.Background(), Request{UserID: 1, TemplateID: 0})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestDownload_QuotaExhausted(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.DownloadsUsed = 3
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(xlsxTemplate(2), nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 429, apperrors.StatusOf(err))
	assert.Contains(t, err.Error(), "monthly download limit")
}

func TestDownload_QuotaRollsOverOnNewMonth(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.DownloadsUsed = 3
	u.LastUsageReset = time.Now().UTC().AddDate(0, -1, 0)
	tpl := xlsxTemplate(2)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.activity.On("RecordDownload", ctx, int64(1), int64(2)).Return(nil)
	m.templates.On("IncrementDownloads", ctx, int64(2)).Return(nil)
	m.store.On("PresignDownload", ctx, tpl.FileKey, 15*time.Minute).Return("https://cdn/signed", nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.NoError(t, err)
	assert.Equal(t, 1, u.DownloadsUsed)
	assert.Equal(t, 2, resp.DownloadsRemaining)
}

func TestDownload_PremiumRequiresSubscription(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	tpl := xlsxTemplate(2)
	tpl.IsPremium = true
	m.users.On("GetByID", ctx, int64(1)).Return(freeUser(1), nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 403, apperrors.StatusOf(err))
}

func TestDownload_PremiumRejectedWhenSubscriptionLapsed(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	lapsed := time.Now().UTC().Add(-24 * time.Hour)
	u := freeUser(1)
	u.Tier = user.TierProfessional
	u.SubscriptionStatus = user.StatusActive
	u.SubscriptionExpiresAt = &lapsed
	tpl := xlsxTemplate(2)
	tpl.IsPremium = true
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 403, apperrors.StatusOf(err))
}

func TestDownload_PurchasedTemplateBypassesGateAndQuota(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.DownloadsUsed = 3
	tpl := xlsxTemplate(2)
	tpl.IsPremium = true
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(true, nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.activity.On("RecordDownload", ctx, int64(1), int64(2)).Return(nil)
	m.templates.On("IncrementDownloads", ctx, int64(2)).Return(nil)
	m.store.On("PresignDownload", ctx, tpl.FileKey, 15*time.Minute).Return("https://cdn/signed", nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.NoError(t, err)
	assert.Equal(t, 3, u.DownloadsUsed)
	assert.Equal(t, 0, resp.DownloadsRemaining)
}

func TestDownload_EnterpriseIsUnlimited(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.Tier = user.TierEnterprise
	u.SubscriptionStatus = user.StatusActive
	u.DownloadsUsed = 500
	tpl := xlsxTemplate(2)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.activity.On("RecordDownload", ctx, int64(1), int64(2)).Return(nil)
	m.templates.On("IncrementDownloads", ctx, int64(2)).Return(nil)
	m.store.On("PresignDownload", ctx, tpl.FileKey, 15*time.Minute).Return("https://cdn/signed", nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.NoError(t, err)
	assert.Equal(t, 500, u.DownloadsUsed)
	assert.Equal(t, user.Unlimited, resp.DownloadsRemaining)
}

func TestDownload_MissingFile(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	tpl := xlsxTemplate(2)
	tpl.FileKey = ""
	m.users.On("GetByID", ctx, int64(1)).Return(freeUser(1), nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 404, apperrors.StatusOf(err))
}

func TestDownload_HistoryFailureDoesNotBlock(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	tpl := xlsxTemplate(2)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(tpl, nil)
	m.purchases.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.activity.On("RecordDownload", ctx, int64(1), int64(2)).Return(assert.AnError)
	m.templates.On("IncrementDownloads", ctx, int64(2)).Return(assert.AnError)
	m.store.On("PresignDownload", ctx, tpl.FileKey, 15*time.Minute).Return("https://cdn/signed", nil)

	resp, err := uc.Download(ctx, Request{UserID: 1, TemplateID: 2})

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/signed", resp.URL)
}

// ==================== HISTORY TESTS ====================

func TestHistory_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	when := time.Now().UTC()
	m.activity.On("RecentDownloads", ctx, int64(1), int64(20)).Return([]activity.Download{
		{ID: 10, UserID: 1, TemplateID: 2, DownloadedAt: when},
		{ID: 9, UserID: 1, TemplateID: 5, DownloadedAt: when.Add(-time.Hour)},
	}, nil)

	resp, err := uc.History(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, resp.Downloads, 2)
	assert.Equal(t, int64(2), resp.Downloads[0].TemplateID)
}

func TestHistory_RepositoryError(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.activity.On("RecentDownloads", ctx, int64(1), int64(20)).Return(nil, assert.AnError)

	resp, err := uc.History(ctx, 1)

	assert.Error(t, err)
	assert.Nil(t, resp)
}
