package billing

import "context"

// Usecase defines the interface for billing business logic.
type Usecase interface {
	ListPlans(ctx context.Context) *PlansResponse
	Subscribe(ctx context.Context, in SubscribeRequest) (*IntentResponse, error)
	PurchaseTemplate(ctx context.Context, in PurchaseTemplateRequest) (*IntentResponse, error)
	Confirm(ctx context.Context, in ConfirmRequest) (*ConfirmResponse, error)
	Cancel(ctx context.Context, userID int64) (*CancelResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	History(ctx context.Context, userID int64) (*HistoryResponse, error)
}
