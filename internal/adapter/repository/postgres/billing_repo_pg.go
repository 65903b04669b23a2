package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pmblueprints/internal/domain/billing"
)

// BillingRepoPG persists payments and a-la-carte template purchases.
type BillingRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewBillingRepoPG creates a new instance of BillingRepoPG.
func NewBillingRepoPG(db *gorm.DB, log *zap.Logger) *BillingRepoPG {
	return &BillingRepoPG{db: db, log: log}
}

func schemaToPayment(m *PaymentSchema) *billing.Payment {
	return &billing.Payment{
		ID:                    m.ID,
		UserID:                m.UserID,
		StripePaymentIntentID: m.StripePaymentIntentID,
		Amount:                m.Amount,
		Currency:              m.Currency,
		Status:                m.Status,
		Tier:                  m.Tier,
		TemplateID:            m.TemplateID,
		Description:           m.Description,
		CreatedAt:             m.CreatedAt,
	}
}

// CreatePayment inserts a payment record.
func (r *BillingRepoPG) CreatePayment(ctx context.Context, p *billing.Payment) (int64, error) {
	if p == nil {
		return 0, errors.New("payment cannot be nil")
	}

	model := PaymentSchema{
		UserID:                p.UserID,
		StripePaymentIntentID: p.StripePaymentIntentID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		Status:                p.Status,
		Tier:                  p.Tier,
		TemplateID:            p.TemplateID,
		Description:           p.Description,
		CreatedAt:             time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create payment", zap.Error(err), zap.Int64("user_id", p.UserID))
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}

	r.log.Info("payment recorded",
		zap.Int64("id", model.ID),
		zap.Int64("user_id", p.UserID),
		zap.Int64("amount", p.Amount))
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	return model.ID, nil
}

// GetPaymentByIntentID retrieves a payment by its Stripe payment intent.
// Returns (nil, nil) when no payment was recorded for the intent.
func (r *BillingRepoPG) GetPaymentByIntentID(ctx context.Context, intentID string) (*billing.Payment, error) {
	var model PaymentSchema
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", intentID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get payment by intent", zap.Error(err), zap.String("intent_id", intentID))
		return nil, fmt.Errorf("failed to get payment by intent: %w", err)
	}

	return schemaToPayment(&model), nil
}

// UpdatePaymentStatus moves a payment to a new status.
func (r *BillingRepoPG) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	err := r.db.WithContext(ctx).Model(&PaymentSchema{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
	if err != nil {
		r.log.Error("failed to update payment status", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

// ListPayments returns a user's payments, newest first.
func (r *BillingRepoPG) ListPayments(ctx context.Context, userID int64) ([]billing.Payment, error) {
	var models []PaymentSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list payments", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]billing.Payment, len(models))
	for i := range models {
		payments[i] = *schemaToPayment(&models[i])
	}
	return payments, nil
}

// CreatePurchase grants permanent access to a single template. Granting
// twice is a no-op.
func (r *BillingRepoPG) CreatePurchase(ctx context.Context, p *billing.Purchase) error {
	if p == nil {
		return errors.New("purchase cannot be nil")
	}

	model := PurchaseSchema{
		UserID:      p.UserID,
		TemplateID:  p.TemplateID,
		PaymentID:   p.PaymentID,
		PurchasedAt: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", p.UserID, p.TemplateID).
		FirstOrCreate(&model).Error
	if err != nil {
		r.log.Error("failed to create purchase", zap.Error(err),
			zap.Int64("user_id", p.UserID), zap.Int64("template_id", p.TemplateID))
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	p.ID = model.ID
	p.PurchasedAt = model.PurchasedAt
	return nil
}

// HasPurchase reports whether the user bought a template a la carte.
func (r *BillingRepoPG) HasPurchase(ctx context.Context, userID, templateID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PurchaseSchema{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}

// PurchasedTemplateIDs returns the IDs of every template the user bought.
func (r *BillingRepoPG) PurchasedTemplateIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&PurchaseSchema{}).
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Pluck("template_id", &ids).Error
	if err != nil {
		r.log.Error("failed to list purchases", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return ids, nil
}
