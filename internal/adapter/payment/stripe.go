package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"pmblueprints/internal/usecase/billing"
)

// StripeGateway implements billing.Gateway against the Stripe API.
type StripeGateway struct {
	sc            *client.API
	webhookSecret string
	log           *zap.Logger
}

// NewStripeGateway creates a gateway bound to one Stripe account.
func NewStripeGateway(secretKey, webhookSecret string, log *zap.Logger) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc, webhookSecret: webhookSecret, log: log}
}

// CreateCustomer creates a Stripe customer and returns its ID.
func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	cust, err := g.sc.Customers.New(params)
	if err != nil {
		g.log.Error("failed to create stripe customer", zap.String("email", email), zap.Error(err))
		return "", fmt.Errorf("create stripe customer: %w", err)
	}

	return cust.ID, nil
}

// CreatePaymentIntent opens a payment intent and returns its client secret.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, in billing.IntentParams) (*billing.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		g.log.Error("failed to create payment intent", zap.Int64("amount", in.Amount), zap.Error(err))
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	g.log.Info("payment intent created", zap.String("intent_id", pi.ID), zap.Int64("amount", in.Amount))
	return intentFromStripe(pi), nil
}

// GetPaymentIntent retrieves the current state of a payment intent.
func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*billing.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.Get(id, params)
	if err != nil {
		g.log.Error("failed to get payment intent", zap.String("intent_id", id), zap.Error(err))
		return nil, fmt.Errorf("get payment intent: %w", err)
	}

	return intentFromStripe(pi), nil
}

// VerifyWebhook checks the Stripe signature and decodes the event. A
// payment_intent event carries the intent in its data object.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*billing.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.log.Warn("webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	out := &billing.WebhookEvent{Type: string(event.Type)}
	if event.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err == nil && pi.ID != "" {
			out.Intent = intentFromStripe(&pi)
		}
	}

	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *billing.Intent {
	intent := &billing.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
	if pi.Currency != "" {
		intent.Currency = string(pi.Currency)
	}
	return intent
}
