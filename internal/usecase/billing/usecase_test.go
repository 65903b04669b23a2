package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	domain "pmblueprints/internal/domain/billing"
	"pmblueprints/internal/domain/template"
	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// MockGateway is a mock implementation of Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	args := m.Called(ctx, email, name)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, in IntentParams) (*Intent, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

func (m *MockGateway) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

func (m *MockGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WebhookEvent), args.Error(1)
}

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

// MockRepository is a mock implementation of Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePayment(ctx context.Context, p *domain.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetPaymentByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockRepository) ListPayments(ctx context.Context, userID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockRepository) CreatePurchase(ctx context.Context, p *domain.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) HasPurchase(ctx context.Context, userID, templateID int64) (bool, error) {
	args := m.Called(ctx, userID, templateID)
	return args.Bool(0), args.Error(1)
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

type testMocks struct {
	gateway   *MockGateway
	users     *MockUserRepository
	repo      *MockRepository
	templates *MockTemplateRepository
}

func setupTestUsecase(t *testing.T) (*Service, *testMocks) {
	m := &testMocks{
		gateway:   new(MockGateway),
		users:     new(MockUserRepository),
		repo:      new(MockRepository),
		templates: new(MockTemplateRepository),
	}
	uc := New(m.gateway, m.users, m.repo, m.templates, zaptest.NewLogger(t))
	return uc, m
}

// ==================== PLANS TESTS ====================

func TestListPlans_SortedByPrice(t *testing.T) {
	uc, _ := setupTestUsecase(t)

	resp := uc.ListPlans(context.Background())

	assert.Len(t, resp.Plans, 3)
	assert.Equal(t, user.TierFree, resp.Plans[0].Tier)
	assert.Equal(t, user.TierProfessional, resp.Plans[1].Tier)
	assert.Equal(t, user.TierEnterprise, resp.Plans[2].Tier)
	assert.Equal(t, domain.TemplatePriceCents, resp.TemplatePriceCents)
}

// ==================== SUBSCRIBE TESTS ====================

func TestSubscribe_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := &user.User{ID: 1, Email: "ada@example.com", Tier: user.TierFree, StripeCustomerID: "cus_1"}
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.gateway.On("CreatePaymentIntent", ctx, mock.MatchedBy(func(in IntentParams) bool {
		return in.Amount == 5000 && in.Metadata["tier"] == user.TierProfessional
	})).Return(&Intent{ID: "pi_1", ClientSecret: "secret_1", Amount: 5000}, nil)

	resp, err := uc.Subscribe(ctx, SubscribeRequest{UserID: 1, Tier: user.TierProfessional})

	assert.NoError(t, err)
	assert.Equal(t, "pi_1", resp.IntentID)
	assert.Equal(t, "secret_1", resp.ClientSecret)
	m.gateway.AssertExpectations(t)
}

func TestSubscribe_CreatesCustomerOnFirstPayment(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := &user.User{ID: 1, Email: "ada@example.com", FirstName: "Ada", Tier: user.TierFree}
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.gateway.On("CreateCustomer", ctx, "ada@example.com", "Ada").Return("cus_new", nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.gateway.On("CreatePaymentIntent", ctx, mock.AnythingOfType("IntentParams")).
		Return(&Intent{ID: "pi_1", ClientSecret: "secret_1", Amount: 5000}, nil)

	_, err := uc.Subscribe(ctx, SubscribeRequest{UserID: 1, Tier: user.TierProfessional})

	assert.NoError(t, err)
	assert.Equal(t, "cus_new", u.StripeCustomerID)
	m.gateway.AssertExpectations(t)
}

func TestSubscribe_UnknownTier(t *testing.T) {
	uc, _ := setupTestUsecase(t)

	resp, err := uc.Subscribe(context.Background(), SubscribeRequest{UserID: 1, Tier: "platinum"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestSubscribe_AlreadyOnPlan(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := &user.User{ID: 1, Tier: user.TierProfessional, SubscriptionStatus: user.StatusActive}
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)

	resp, err := uc.Subscribe(ctx, SubscribeRequest{UserID: 1, Tier: user.TierProfessional})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 409, apperrors.StatusOf(err))
}

// ==================== PURCHASE TESTS ====================

func TestPurchaseTemplate_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := &user.User{ID: 1, Email: "ada@example.com", StripeCustomerID: "cus_1"}
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(&template.Template{ID: 2, Name: "RAID Log"}, nil)
	m.repo.On("HasPurchase", ctx, int64(1), int64(2)).Return(false, nil)
	m.gateway.On("CreatePaymentIntent", ctx, mock.MatchedBy(func(in IntentParams) bool {
		return in.Amount == domain.TemplatePriceCents && in.Metadata["template_id"] == "2"
	})).Return(&Intent{ID: "pi_2", ClientSecret: "secret_2", Amount: domain.TemplatePriceCents}, nil)

	resp, err := uc.PurchaseTemplate(ctx, PurchaseTemplateRequest{UserID: 1, TemplateID: 2})

	assert.NoError(t, err)
	assert.Equal(t, "pi_2", resp.IntentID)
	assert.Equal(t, domain.TemplatePriceCents, resp.Amount)
}

func TestPurchaseTemplate_AlreadyOwned(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.users.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1}, nil)
	m.templates.On("GetByID", ctx, int64(2)).Return(&template.Template{ID: 2}, nil)
	m.repo.On("HasPurchase", ctx, int64(1), int64(2)).Return(true, nil)

	resp, err := uc.PurchaseTemplate(ctx, PurchaseTemplateRequest{UserID: 1, TemplateID: 2})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 409, apperrors.StatusOf(err))
}

// ==================== CONFIRM TESTS ====================

func subscriptionIntent(userID string) *Intent {
	return &Intent{
		ID:       "pi_sub",
		Amount:   5000,
		Currency: "usd",
		Status:   "succeeded",
		Metadata: map[string]string{
			"kind":    "subscription",
			"user_id": userID,
			"tier":    user.TierProfessional,
		},
	}
}

func TestConfirm_SubscriptionActivated(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := &user.User{ID: 1, Tier: user.TierFree}
	m.gateway.On("GetPaymentIntent", ctx, "pi_sub").Return(subscriptionIntent("1"), nil)
	m.repo.On("GetPaymentByIntentID", ctx, "pi_sub").Return(nil, nil)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.repo.On("CreatePayment", ctx, mock.AnythingOfType("*billing.Payment")).Return(int64(10), nil)
	m.users.On("Update", ctx, u).Return(nil)

	resp, err := uc.Confirm(ctx, ConfirmRequest{UserID: 1, IntentID: "pi_sub"})

	assert.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, user.TierProfessional, resp.Tier)
	assert.Equal(t, user.TierProfessional, u.Tier)
	assert.Equal(t, user.StatusActive, u.SubscriptionStatus)
	assert.NotNil(t, u.SubscriptionExpiresAt)
	assert.True(t, u.SubscriptionExpiresAt.After(time.Now()))
}

func TestConfirm_SubscriptionResetsUsageCounters(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := &user.User{ID: 1, Tier: user.TierFree, DownloadsUsed: 3, AIGenerationsUsed: 3}
	m.gateway.On("GetPaymentIntent", ctx, "pi_sub").Return(subscriptionIntent("1"), nil)
	m.repo.On("GetPaymentByIntentID", ctx, "pi_sub").Return(nil, nil)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.repo.On("CreatePayment", ctx, mock.AnythingOfType("*billing.Payment")).Return(int64(10), nil)
	m.users.On("Update", ctx, u).Return(nil)

	_, err := uc.Confirm(ctx, ConfirmRequest{UserID: 1, IntentID: "pi_sub"})

	assert.NoError(t, err)
	assert.Zero(t, u.DownloadsUsed)
	assert.Zero(t, u.AIGenerationsUsed)
	assert.False(t, u.LastUsageReset.IsZero())
}

func TestConfirm_TemplatePurchaseGranted(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	intent := &Intent{
		ID:       "pi_tpl",
		Amount:   domain.TemplatePriceCents,
		Currency: "usd",
		Status:   "succeeded",
		Metadata: map[string]string{
			"kind":        "template",
			"user_id":     "1",
			"template_id": "2",
		},
	}
	m.gateway.On("GetPaymentIntent", ctx, "pi_tpl").Return(intent, nil)
	m.repo.On("GetPaymentByIntentID", ctx, "pi_tpl").Return(nil, nil)
	m.users.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1}, nil)
	m.repo.On("CreatePayment", ctx, mock.AnythingOfType("*billing.Payment")).Return(int64(11), nil)
	m.repo.On("CreatePurchase", ctx, mock.MatchedBy(func(p *domain.Purchase) bool {
		return p.UserID == 1 && p.TemplateID == 2 && p.PaymentID == 11
	})).Return(nil)

	resp, err := uc.Confirm(ctx, ConfirmRequest{UserID: 1, IntentID: "pi_tpl"})

	assert.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Empty(t, resp.Tier)
	m.repo.AssertExpectations(t)
}

func TestConfirm_PendingIntentRejected(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	intent := subscriptionIntent("1")
	intent.Status = "requires_payment_method"
	m.gateway.On("GetPaymentIntent", ctx, "pi_sub").Return(intent, nil)

	resp, err := uc.Confirm(ctx, ConfirmRequest{UserID: 1, IntentID: "pi_sub"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestConfirm_ForeignIntentRejected(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.gateway.On("GetPaymentIntent", ctx, "pi_sub").Return(subscriptionIntent("42"), nil)

	resp, err := uc.Confirm(ctx, ConfirmRequest{UserID: 1, IntentID: "pi_sub"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 403, apperrors.StatusOf(err))
}

func TestConfirm_IdempotentWhenAlreadyApplied(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.gateway.On("GetPaymentIntent", ctx, "pi_sub").Return(subscriptionIntent("1"), nil)
	m.repo.On("GetPaymentByIntentID", ctx, "pi_sub").
		Return(&domain.Payment{ID: 10, Tier: user.TierProfessional}, nil)

	resp, err := uc.Confirm(ctx, ConfirmRequest{UserID: 1, IntentID: "pi_sub"})

	assert.NoError(t, err)
	assert.Equal(t, user.TierProfessional, resp.Tier)
	m.repo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

// ==================== CANCEL TESTS ====================

func TestCancel_DowngradesToFreeAndResetsUsage(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	expiry := time.Now().Add(10 * 24 * time.Hour)
	u := &user.User{
		ID:                    1,
		Tier:                  user.TierProfessional,
		SubscriptionStatus:    user.StatusActive,
		SubscriptionExpiresAt: &expiry,
		DownloadsUsed:         7,
		AIGenerationsUsed:     4,
	}
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.users.On("Update", ctx, u).Return(nil)

	resp, err := uc.Cancel(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, user.TierFree, resp.Tier)
	assert.Equal(t, user.TierFree, u.Tier)
	assert.Equal(t, user.StatusCancelled, u.SubscriptionStatus)
	assert.Nil(t, u.SubscriptionExpiresAt)
	assert.Zero(t, u.DownloadsUsed)
	assert.Zero(t, u.AIGenerationsUsed)
	m.users.AssertExpectations(t)
}

func TestCancel_RejectedOnFreeTier(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.users.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1, Tier: user.TierFree}, nil)

	resp, err := uc.Cancel(ctx, 1)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 400, apperrors.StatusOf(err))
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ==================== WEBHOOK TESTS ====================

func TestHandleWebhook_AppliesSucceededIntent(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := &user.User{ID: 1, Tier: user.TierFree}
	event := &WebhookEvent{Type: "payment_intent.succeeded", Intent: subscriptionIntent("1")}
	m.gateway.On("VerifyWebhook", []byte("payload"), "sig").Return(event, nil)
	m.repo.On("GetPaymentByIntentID", ctx, "pi_sub").Return(nil, nil)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.repo.On("CreatePayment", ctx, mock.AnythingOfType("*billing.Payment")).Return(int64(10), nil)
	m.users.On("Update", ctx, u).Return(nil)

	err := uc.HandleWebhook(ctx, []byte("payload"), "sig")

	assert.NoError(t, err)
	assert.Equal(t, user.TierProfessional, u.Tier)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	uc, m := setupTestUsecase(t)

	m.gateway.On("VerifyWebhook", []byte("payload"), "bad").Return(nil, assert.AnError)

	err := uc.HandleWebhook(context.Background(), []byte("payload"), "bad")

	assert.Error(t, err)
	assert.Equal(t, 401, apperrors.StatusOf(err))
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	uc, m := setupTestUsecase(t)

	event := &WebhookEvent{Type: "payment_intent.created", Intent: subscriptionIntent("1")}
	m.gateway.On("VerifyWebhook", []byte("payload"), "sig").Return(event, nil)

	err := uc.HandleWebhook(context.Background(), []byte("payload"), "sig")

	assert.NoError(t, err)
	m.repo.AssertNotCalled(t, "GetPaymentByIntentID", mock.Anything, mock.Anything)
}

// ==================== HISTORY TESTS ====================

func TestHistory_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.repo.On("ListPayments", ctx, int64(1)).Return([]domain.Payment{
		{ID: 2, Amount: 5000, Currency: "usd", Status: domain.StatusCompleted, Tier: user.TierProfessional},
		{ID: 1, Amount: 1500, Currency: "usd", Status: domain.StatusCompleted},
	}, nil)

	resp, err := uc.History(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, resp.Payments, 2)
	assert.Equal(t, int64(5000), resp.Payments[0].Amount)
}
