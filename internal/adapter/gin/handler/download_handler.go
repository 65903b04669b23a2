package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/usecase/download"
)

// DownloadHandler handles HTTP requests for template downloads.
type DownloadHandler struct {
	uc  download.Usecase
	log *zap.Logger
}

// NewDownloadHandler creates a new DownloadHandler instance.
func NewDownloadHandler(uc download.Usecase, log *zap.Logger) *DownloadHandler {
	return &DownloadHandler{uc: uc, log: log}
}

// Download handles POST /v1/templates/:id/download
func (h *DownloadHandler) Download(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.uc.Download(c.Request.Context(), download.Request{
		UserID:     middleware.UserID(c),
		TemplateID: id,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History handles GET /v1/downloads
func (h *DownloadHandler) History(c *gin.Context) {
	resp, err := h.uc.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
