package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/usecase/account"
)

// AccountHandler handles HTTP requests for the account area.
type AccountHandler struct {
	uc  account.Usecase
	log *zap.Logger
}

// NewAccountHandler creates a new AccountHandler instance.
func NewAccountHandler(uc account.Usecase, log *zap.Logger) *AccountHandler {
	return &AccountHandler{uc: uc, log: log}
}

// UpdateProfileRequest represents the HTTP request body for a profile update.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Company   string `json:"company" binding:"max=200"`
}

// SetOpenAIKeyRequest represents the HTTP request body for storing an
// own OpenAI key. An empty key clears it.
type SetOpenAIKeyRequest struct {
	APIKey string `json:"api_key" binding:"omitempty,min=20,max=200"`
}

// Profile handles GET /v1/account/profile
func (h *AccountHandler) Profile(c *gin.Context) {
	resp, err := h.uc.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile handles PUT /v1/account/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.UpdateProfile(c.Request.Context(), account.UpdateProfileRequest{
		UserID:    middleware.UserID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SetOpenAIKey handles PUT /v1/account/openai-key
func (h *AccountHandler) SetOpenAIKey(c *gin.Context) {
	var req SetOpenAIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := h.uc.SetOpenAIKey(c.Request.Context(), account.SetOpenAIKeyRequest{
		UserID: middleware.UserID(c),
		APIKey: req.APIKey,
	}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// Dashboard handles GET /v1/account/dashboard
func (h *AccountHandler) Dashboard(c *gin.Context) {
	resp, err := h.uc.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
