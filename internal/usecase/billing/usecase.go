package billing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "pmblueprints/internal/domain/billing"
	"pmblueprints/internal/domain/template"
	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// Gateway abstracts the payment provider.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreatePaymentIntent(ctx context.Context, in IntentParams) (*Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// UserRepository defines the user data access billing needs.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// Repository persists payments and purchases.
type Repository interface {
	CreatePayment(ctx context.Context, p *domain.Payment) (int64, error)
	GetPaymentByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)
	ListPayments(ctx context.Context, userID int64) ([]domain.Payment, error)
	CreatePurchase(ctx context.Context, p *domain.Purchase) error
	HasPurchase(ctx context.Context, userID, templateID int64) (bool, error)
}

// TemplateRepository resolves templates being purchased.
type TemplateRepository interface {
	GetByID(ctx context.Context, id int64) (*template.Template, error)
}

// Service implements the billing business logic.
type Service struct {
	gateway   Gateway
	users     UserRepository
	repo      Repository
	templates TemplateRepository
	log       *zap.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// New creates a billing Service.
func New(gateway Gateway, users UserRepository, repo Repository, templates TemplateRepository, log *zap.Logger) *Service {
	return &Service{
		gateway:   gateway,
		users:     users,
		repo:      repo,
		templates: templates,
		log:       log,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Metadata keys stamped on payment intents so webhooks can be applied
// without extra state.
const (
	metaKind       = "kind"
	metaUserID     = "user_id"
	metaTier       = "tier"
	metaTemplateID = "template_id"

	kindSubscription = "subscription"
	kindTemplate     = "template"
)

// ListPlans returns the static plan catalog, free tier first.
func (s *Service) ListPlans(ctx context.Context) *PlansResponse {
	plans := make([]domain.Plan, 0, len(domain.Plans))
	for _, p := range domain.Plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Price < plans[j].Price })

	return &PlansResponse{
		Plans:              plans,
		TemplatePriceCents: domain.TemplatePriceCents,
	}
}

func (s *Service) ensureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u.StripeCustomerID != "" {
		return u.StripeCustomerID, nil
	}

	id, err := s.gateway.CreateCustomer(ctx, u.Email, u.FullName())
	if err != nil {
		return "", err
	}

	u.StripeCustomerID = id
	if err := s.users.Update(ctx, u); err != nil {
		s.log.Warn("failed to store stripe customer id", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return id, nil
}

// Subscribe opens a payment intent for a plan upgrade.
func (s *Service) Subscribe(ctx context.Context, in SubscribeRequest) (*IntentResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("tier", "tier must be professional or enterprise")
	}

	plan, ok := domain.PlanFor(in.Tier)
	if !ok || plan.Price <= 0 {
		return nil, apperrors.NewValidationError("tier", "unknown plan")
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if u.Tier == in.Tier && u.IsPaid() {
		return nil, apperrors.NewAlreadyExistsError("subscription", "you are already on this plan")
	}

	customerID, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, IntentParams{
		Amount:      plan.Price,
		Currency:    plan.Currency,
		CustomerID:  customerID,
		Description: fmt.Sprintf("%s plan subscription", plan.Name),
		Metadata: map[string]string{
			metaKind:   kindSubscription,
			metaUserID: strconv.FormatInt(u.ID, 10),
			metaTier:   in.Tier,
		},
	})
	if err != nil {
		return nil, err
	}

	return &IntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     plan.Currency,
	}, nil
}

// PurchaseTemplate opens a payment intent for a single template.
func (s *Service) PurchaseTemplate(ctx context.Context, in PurchaseTemplateRequest) (*IntentResponse, error) {
	if err := s.validate.Struct(in); err != nil {
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

	owned, err := s.repo.HasPurchase(ctx, u.ID, t.ID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, apperrors.NewAlreadyExistsError("purchase", "you already own this template")
	}

	customerID, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, IntentParams{
		Amount:      domain.TemplatePriceCents,
		Currency:    "usd",
		CustomerID:  customerID,
		Description: fmt.Sprintf("Template purchase: %s", t.Name),
		Metadata: map[string]string{
			metaKind:       kindTemplate,
			metaUserID:     strconv.FormatInt(u.ID, 10),
			metaTemplateID: strconv.FormatInt(t.ID, 10),
		},
	})
	if err != nil {
		return nil, err
	}

	return &IntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     "usd",
	}, nil
}

// Confirm finalizes a payment after the frontend confirmed the intent.
// Confirming an already-applied intent is a no-op.
func (s *Service) Confirm(ctx context.Context, in ConfirmRequest) (*ConfirmResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("intent_id", "intent id is required")
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, in.IntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != "succeeded" {
		return nil, apperrors.NewValidationError("intent_id",
			fmt.Sprintf("payment has not succeeded (status %s)", intent.Status))
	}

	if ownerID, err := strconv.ParseInt(intent.Metadata[metaUserID], 10, 64); err != nil || ownerID != in.UserID {
		s.log.Warn("payment confirmation for foreign intent",
			zap.Int64("user_id", in.UserID), zap.String("intent_id", intent.ID))
		return nil, apperrors.NewPermissionDeniedError("payment does not belong to this account")
	}

	tier, err := s.applyIntent(ctx, intent)
	if err != nil {
		return nil, err
	}

	return &ConfirmResponse{Status: "completed", Tier: tier}, nil
}

// Cancel drops the user back to the free tier and resets the usage
// counters. Access already granted by past payments is not revoked.
func (s *Service) Cancel(ctx context.Context, userID int64) (*CancelResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Tier == user.TierFree || u.Tier == "" {
		return nil, apperrors.NewValidationError("subscription", "no active subscription to cancel")
	}

	u.Tier = user.TierFree
	u.SubscriptionStatus = user.StatusCancelled
	u.SubscriptionExpiresAt = nil
	u.ResetUsage(s.now().UTC())
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("subscription cancelled", zap.Int64("user_id", u.ID))
	return &CancelResponse{Status: "cancelled", Tier: user.TierFree}, nil
}

// HandleWebhook verifies and applies a provider event. Only
// payment_intent.succeeded mutates state; everything else is ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return apperrors.NewUnauthorizedError("invalid webhook signature")
	}

	if event.Type != "payment_intent.succeeded" || event.Intent == nil {
		s.log.Debug("webhook event ignored", zap.String("type", event.Type))
		return nil
	}

	if _, err := s.applyIntent(ctx, event.Intent); err != nil {
		s.log.Error("failed to apply webhook payment",
			zap.String("intent_id", event.Intent.ID), zap.Error(err))
		return err
	}
	return nil
}

// applyIntent records the payment and grants what it paid for. The
// stored intent ID makes application idempotent across the confirm
// endpoint and the webhook.
func (s *Service) applyIntent(ctx context.Context, intent *Intent) (string, error) {
	existing, err := s.repo.GetPaymentByIntentID(ctx, intent.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		s.log.Debug("payment already applied", zap.String("intent_id", intent.ID))
		return existing.Tier, nil
	}

	userID, err := strconv.ParseInt(intent.Metadata[metaUserID], 10, 64)
	if err != nil {
		return "", fmt.Errorf("payment intent %s has no user metadata", intent.ID)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	payment := &domain.Payment{
		UserID:                u.ID,
		StripePaymentIntentID: intent.ID,
		Amount:                intent.Amount,
		Currency:              intent.Currency,
		Status:                domain.StatusCompleted,
	}

	switch intent.Metadata[metaKind] {
	case kindSubscription:
		tier := intent.Metadata[metaTier]
		if _, ok := domain.PlanFor(tier); !ok {
			return "", fmt.Errorf("payment intent %s carries unknown tier %q", intent.ID, tier)
		}
		payment.Tier = tier
		payment.Description = fmt.Sprintf("%s plan subscription", tier)
		if _, err := s.repo.CreatePayment(ctx, payment); err != nil {
			return "", err
		}

		now := s.now().UTC()
		expiry := now.AddDate(0, 1, 0)
		u.Tier = tier
		u.SubscriptionStatus = user.StatusActive
		u.SubscriptionExpiresAt = &expiry
		u.ResetUsage(now)
		if err := s.users.Update(ctx, u); err != nil {
			return "", err
		}

		s.log.Info("subscription activated",
			zap.Int64("user_id", u.ID), zap.String("tier", tier))
		return tier, nil

	case kindTemplate:
		templateID, err := strconv.ParseInt(intent.Metadata[metaTemplateID], 10, 64)
		if err != nil {
			return "", fmt.Errorf("payment intent %s has no template metadata", intent.ID)
		}
		payment.TemplateID = &templateID
		payment.Description = "A-la-carte template purchase"
		paymentID, err := s.repo.CreatePayment(ctx, payment)
		if err != nil {
			return "", err
		}

		purchase := &domain.Purchase{
			UserID:     u.ID,
			TemplateID: templateID,
			PaymentID:  paymentID,
		}
		if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
			return "", err
		}

		s.log.Info("template purchase granted",
			zap.Int64("user_id", u.ID), zap.Int64("template_id", templateID))
		return "", nil

	default:
		return "", fmt.Errorf("payment intent %s carries unknown kind %q", intent.ID, intent.Metadata[metaKind])
	}
}

// History returns the user's payments, newest first.
func (s *Service) History(ctx context.Context, userID int64) (*HistoryResponse, error) {
	payments, err := s.repo.ListPayments(ctx, userID)
	if err != nil {
		return nil, err
	}

	records := make([]PaymentRecord, len(payments))
	for i, p := range payments {
		records[i] = PaymentRecord{
			ID:          p.ID,
			Amount:      p.Amount,
			Currency:    p.Currency,
			Status:      p.Status,
			Tier:        p.Tier,
			TemplateID:  p.TemplateID,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
		}
	}
	return &HistoryResponse{Payments: records}, nil
}
