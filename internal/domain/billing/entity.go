package billing

import "time"

// Payment statuses.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// Payment records a captured Stripe payment, either a subscription
// activation or an a-la-carte template purchase.
type Payment struct {
	ID                    int64
	UserID                int64
	StripePaymentIntentID string
	Amount                int64 // cents
	Currency              string
	Status                string
	Tier                  string // subscription tier when this paid for a plan
	TemplateID            *int64 // template when this paid for a single template
	Description           string
	CreatedAt             time.Time
}

// Purchase grants a user permanent download access to a single
// template, independent of subscription tier.
type Purchase struct {
	ID          int64
	UserID      int64
	TemplateID  int64
	PaymentID   int64
	PurchasedAt time.Time
}
