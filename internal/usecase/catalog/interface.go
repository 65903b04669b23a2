package catalog

import "context"

// Usecase defines the interface for catalog business logic operations.
type Usecase interface {
	ListTemplates(ctx context.Context, in ListTemplatesRequest) (*ListTemplatesResponse, error)
	GetTemplate(ctx context.Context, in GetTemplateRequest) (*GetTemplateResponse, error)
	Facets(ctx context.Context) (*FacetsResponse, error)
	RateTemplate(ctx context.Context, in RateTemplateRequest) (*RateTemplateResponse, error)
	AddFavorite(ctx context.Context, in FavoriteRequest) error
	RemoveFavorite(ctx context.Context, in FavoriteRequest) error
	ListFavorites(ctx context.Context, userID int64) (*ListFavoritesResponse, error)
}
