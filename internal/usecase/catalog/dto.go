package catalog

// ListTemplatesRequest represents the request payload for browsing the catalog.
type ListTemplatesRequest struct {
	Industry string
	Category string
	Search   string
	Page     int64
	Limit    int64
}

// TemplateSummary is the catalog card shape of a template.
type TemplateSummary struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Industry    string   `json:"industry"`
	Category    string   `json:"category"`
	FileFormat  string   `json:"file_format"`
	PreviewURL  string   `json:"preview_url"`
	Tags        []string `json:"tags,omitempty"`
	HasFormulas bool     `json:"has_formulas"`
	IsPremium   bool     `json:"is_premium"`
	Downloads   int64    `json:"downloads"`
	Rating      float64  `json:"rating"`
}

// Pagination describes one page of results.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// ListTemplatesResponse represents one catalog page.
type ListTemplatesResponse struct {
	Templates  []TemplateSummary `json:"templates"`
	Pagination Pagination        `json:"pagination"`
}

// GetTemplateRequest identifies a template, with the optional viewer
// used to resolve favorite status.
type GetTemplateRequest struct {
	ID     int64
	UserID int64 // 0 for anonymous viewers
}

// GetTemplateResponse is the template detail view.
type GetTemplateResponse struct {
	Template   TemplateSummary   `json:"template"`
	FileSize   int64             `json:"file_size"`
	IsFavorite bool              `json:"is_favorite"`
	Related    []TemplateSummary `json:"related"`
}

// FacetsResponse lists the catalog's browse dimensions.
type FacetsResponse struct {
	Industries []string `json:"industries"`
	Categories []string `json:"categories"`
}

// RateTemplateRequest represents a star rating submission.
type RateTemplateRequest struct {
	UserID     int64
	TemplateID int64
	Stars      int    `validate:"required,min=1,max=5"`
	Review     string `validate:"max=2000"`
}

// RateTemplateResponse carries the recomputed average.
type RateTemplateResponse struct {
	TemplateID int64   `json:"template_id"`
	Rating     float64 `json:"rating"`
}

// FavoriteRequest marks or unmarks a favorite.
type FavoriteRequest struct {
	UserID     int64
	TemplateID int64
}

// ListFavoritesResponse lists the user's favorited templates.
type ListFavoritesResponse struct {
	Templates []TemplateSummary `json:"templates"`
}
