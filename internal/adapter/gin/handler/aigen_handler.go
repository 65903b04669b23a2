package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/usecase/aigen"
)

// AIGenHandler handles HTTP requests for AI document generation.
type AIGenHandler struct {
	uc  aigen.Usecase
	log *zap.Logger
}

// NewAIGenHandler creates a new AIGenHandler instance.
func NewAIGenHandler(uc aigen.Usecase, log *zap.Logger) *AIGenHandler {
	return &AIGenHandler{uc: uc, log: log}
}

// GenerateRequest represents the HTTP request body for generating a document.
type GenerateRequest struct {
	ProjectName  string `json:"project_name" binding:"required,max=200"`
	ProjectType  string `json:"project_type" binding:"max=100"`
	Industry     string `json:"industry" binding:"max=100"`
	Methodology  string `json:"methodology" binding:"max=100"`
	DocumentType string `json:"document_type" binding:"required,max=100"`
	FileFormat   string `json:"file_format" binding:"omitempty,oneof=xlsx docx"`
}

// SuggestRequest represents the HTTP request body for template suggestions.
type SuggestRequest struct {
	ProjectDescription string `json:"project_description" binding:"required,max=2000"`
	Industry           string `json:"industry" binding:"max=100"`
	ProjectPhase       string `json:"project_phase" binding:"max=100"`
	TeamSize           string `json:"team_size" binding:"max=50"`
}

// Generate handles POST /v1/ai/generate
func (h *AIGenHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.Generate(c.Request.Context(), aigen.GenerateRequest{
		UserID:       middleware.UserID(c),
		ProjectName:  req.ProjectName,
		ProjectType:  req.ProjectType,
		Industry:     req.Industry,
		Methodology:  req.Methodology,
		DocumentType: req.DocumentType,
		FileFormat:   req.FileFormat,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Suggest handles POST /v1/ai/suggestions
func (h *AIGenHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.Suggest(c.Request.Context(), aigen.SuggestRequest{
		UserID:             middleware.UserID(c),
		ProjectDescription: req.ProjectDescription,
		Industry:           req.Industry,
		ProjectPhase:       req.ProjectPhase,
		TeamSize:           req.TeamSize,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History handles GET /v1/ai/history
func (h *AIGenHandler) History(c *gin.Context) {
	resp, err := h.uc.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadGeneration handles GET /v1/ai/generations/:id/download
func (h *AIGenHandler) DownloadGeneration(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.uc.DownloadGeneration(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
