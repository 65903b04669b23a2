package billing

import (
	"time"

	"pmblueprints/internal/domain/billing"
)

// IntentParams is the gateway input for opening a payment intent.
type IntentParams struct {
	Amount      int64
	Currency    string
	CustomerID  string
	Description string
	Metadata    map[string]string
}

// Intent is the gateway view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

// WebhookEvent is a verified event delivered by the payment provider.
type WebhookEvent struct {
	Type   string
	Intent *Intent
}

// PlansResponse lists the subscription plans and the a-la-carte price.
type PlansResponse struct {
	Plans              []billing.Plan `json:"plans"`
	TemplatePriceCents int64          `json:"template_price_cents"`
}

// SubscribeRequest opens a payment intent for a plan upgrade.
type SubscribeRequest struct {
	UserID int64
	Tier   string `validate:"required,oneof=professional enterprise"`
}

// PurchaseTemplateRequest opens a payment intent for one template.
type PurchaseTemplateRequest struct {
	UserID     int64
	TemplateID int64 `validate:"required,gt=0"`
}

// IntentResponse carries the client secret the frontend completes
// payment with.
type IntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// ConfirmRequest finalizes a payment after the frontend confirmation.
type ConfirmRequest struct {
	UserID   int64
	IntentID string `validate:"required"`
}

// ConfirmResponse reports the applied payment.
type ConfirmResponse struct {
	Status string `json:"status"`
	Tier   string `json:"tier,omitempty"`
}

// CancelResponse reports the downgrade after a cancellation.
type CancelResponse struct {
	Status string `json:"status"`
	Tier   string `json:"tier"`
}

// PaymentRecord is one entry of a user's payment history.
type PaymentRecord struct {
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Tier        string    `json:"tier,omitempty"`
	TemplateID  *int64    `json:"template_id,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryResponse lists a user's payments.
type HistoryResponse struct {
	Payments []PaymentRecord `json:"payments"`
}
