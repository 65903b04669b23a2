package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/usecase/integration"
)

// IntegrationHandler handles HTTP requests for platform integrations.
type IntegrationHandler struct {
	uc  integration.Usecase
	log *zap.Logger
}

// NewIntegrationHandler creates a new IntegrationHandler instance.
func NewIntegrationHandler(uc integration.Usecase, log *zap.Logger) *IntegrationHandler {
	return &IntegrationHandler{uc: uc, log: log}
}

// IntegrationCallbackRequest represents the HTTP request body completing
// a platform OAuth flow.
type IntegrationCallbackRequest struct {
	State       string `json:"state" binding:"required"`
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirect_uri" binding:"required"`
}

// ExportRequest represents the HTTP request body for a platform export.
type ExportRequest struct {
	TemplateID int64       `json:"template_id" binding:"required,gt=0"`
	Rows       []ExportRow `json:"rows" binding:"max=200,dive"`
}

// ExportRow is one client-supplied row of template data.
type ExportRow struct {
	Name   string   `json:"name" binding:"required,max=200"`
	Values []string `json:"values" binding:"max=10"`
}

// Connect handles POST /v1/integrations/:platform/connect
func (h *IntegrationHandler) Connect(c *gin.Context) {
	redirectURI := c.Query("redirect_uri")
	resp, err := h.uc.ConnectURL(c.Request.Context(), integration.ConnectRequest{
		UserID:      middleware.UserID(c),
		Platform:    c.Param("platform"),
		RedirectURI: redirectURI,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Callback handles POST /v1/integrations/callback
func (h *IntegrationHandler) Callback(c *gin.Context) {
	var req IntegrationCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.HandleCallback(c.Request.Context(), integration.CallbackRequest{
		State:       req.State,
		Code:        req.Code,
		RedirectURI: req.RedirectURI,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status handles GET /v1/integrations
func (h *IntegrationHandler) Status(c *gin.Context) {
	resp, err := h.uc.Status(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Disconnect handles DELETE /v1/integrations/:platform
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	if err := h.uc.Disconnect(c.Request.Context(), middleware.UserID(c), c.Param("platform")); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"disconnected": true})
}

// Export handles POST /v1/integrations/:platform/export
func (h *IntegrationHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	rows := make([]integration.ExportRow, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = integration.ExportRow{Name: r.Name, Values: r.Values}
	}

	resp, err := h.uc.Export(c.Request.Context(), integration.ExportRequest{
		UserID:     middleware.UserID(c),
		Platform:   c.Param("platform"),
		TemplateID: req.TemplateID,
		Rows:       rows,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Test handles POST /v1/integrations/:platform/test
func (h *IntegrationHandler) Test(c *gin.Context) {
	resp, err := h.uc.Test(c.Request.Context(), middleware.UserID(c), c.Param("platform"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
