package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/usecase/billing"
)

// BillingHandler handles HTTP requests for plans and payments.
type BillingHandler struct {
	uc  billing.Usecase
	log *zap.Logger
}

// NewBillingHandler creates a new BillingHandler instance.
func NewBillingHandler(uc billing.Usecase, log *zap.Logger) *BillingHandler {
	return &BillingHandler{uc: uc, log: log}
}

// SubscribeRequest represents the HTTP request body for a plan upgrade.
type SubscribeRequest struct {
	Tier string `json:"tier" binding:"required,oneof=professional enterprise"`
}

// PurchaseRequest represents the HTTP request body for buying one template.
type PurchaseRequest struct {
	TemplateID int64 `json:"template_id" binding:"required,gt=0"`
}

// ConfirmRequest represents the HTTP request body for confirming a payment.
type ConfirmRequest struct {
	IntentID string `json:"intent_id" binding:"required"`
}

// ListPlans handles GET /v1/billing/plans
func (h *BillingHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.ListPlans(c.Request.Context()))
}

// Subscribe handles POST /v1/billing/subscribe
func (h *BillingHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.Subscribe(c.Request.Context(), billing.SubscribeRequest{
		UserID: middleware.UserID(c),
		Tier:   req.Tier,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PurchaseTemplate handles POST /v1/billing/purchase
func (h *BillingHandler) PurchaseTemplate(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.PurchaseTemplate(c.Request.Context(), billing.PurchaseTemplateRequest{
		UserID:     middleware.UserID(c),
		TemplateID: req.TemplateID,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Confirm handles POST /v1/billing/confirm
func (h *BillingHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.Confirm(c.Request.Context(), billing.ConfirmRequest{
		UserID:   middleware.UserID(c),
		IntentID: req.IntentID,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /v1/billing/cancel
func (h *BillingHandler) Cancel(c *gin.Context) {
	resp, err := h.uc.Cancel(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Webhook handles POST /v1/billing/webhook
// The provider signs the raw body; it is passed through unparsed.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "unreadable payload"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.uc.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// History handles GET /v1/billing/history
func (h *BillingHandler) History(c *gin.Context) {
	resp, err := h.uc.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
