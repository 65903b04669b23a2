package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/usecase/catalog"
)

// CatalogHandler handles HTTP requests for browsing templates.
type CatalogHandler struct {
	uc  catalog.Usecase
	log *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler instance.
func NewCatalogHandler(uc catalog.Usecase, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, log: log}
}

// RateRequest represents the HTTP request body for rating a template.
type RateRequest struct {
	Stars  int    `json:"stars" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"max=2000"`
}

// ListTemplates handles GET /v1/templates
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "12"), 10, 64)
	if err != nil || limit < 1 {
		limit = 12
	}

	resp, err := h.uc.ListTemplates(c.Request.Context(), catalog.ListTemplatesRequest{
		Industry: c.Query("industry"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTemplate handles GET /v1/templates/:id
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.uc.GetTemplate(c.Request.Context(), catalog.GetTemplateRequest{
		ID:     id,
		UserID: middleware.UserID(c),
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Facets handles GET /v1/templates/facets
func (h *CatalogHandler) Facets(c *gin.Context) {
	resp, err := h.uc.Facets(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RateTemplate handles POST /v1/templates/:id/rating
func (h *CatalogHandler) RateTemplate(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.RateTemplate(c.Request.Context(), catalog.RateTemplateRequest{
		UserID:     middleware.UserID(c),
		TemplateID: id,
		Stars:      req.Stars,
		Review:     req.Review,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AddFavorite handles POST /v1/templates/:id/favorite
func (h *CatalogHandler) AddFavorite(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}

	if err := h.uc.AddFavorite(c.Request.Context(), catalog.FavoriteRequest{
		UserID:     middleware.UserID(c),
		TemplateID: id,
	}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": true})
}

// RemoveFavorite handles DELETE /v1/templates/:id/favorite
func (h *CatalogHandler) RemoveFavorite(c *gin.Context) {
	id := pathID(c, "id")
	if id == 0 {
		return
	}

	if err := h.uc.RemoveFavorite(c.Request.Context(), catalog.FavoriteRequest{
		UserID:     middleware.UserID(c),
		TemplateID: id,
	}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": false})
}

// ListFavorites handles GET /v1/favorites
func (h *CatalogHandler) ListFavorites(c *gin.Context) {
	resp, err := h.uc.ListFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
