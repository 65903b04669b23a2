package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/cache"
	"pmblueprints/internal/domain/activity"
	"pmblueprints/internal/domain/template"
	apperrors "pmblueprints/pkg/errors"
	"pmblueprints/pkg/security"
)

// Repository defines the template data access the catalog needs.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*template.Template, error)
	List(ctx context.Context, filter template.Filter, page, limit int64) ([]template.Template, int64, error)
	Related(ctx context.Context, industry string, excludeID, limit int64) ([]template.Template, error)
	Industries(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
	UpdateRating(ctx context.Context, id int64, rating float64) error
}

// ActivityRepository defines the favorite and rating persistence the
// catalog needs.
type ActivityRepository interface {
	AddFavorite(ctx context.Context, userID, templateID int64) error
	RemoveFavorite(ctx context.Context, userID, templateID int64) error
	IsFavorite(ctx context.Context, userID, templateID int64) (bool, error)
	FavoriteTemplateIDs(ctx context.Context, userID int64) ([]int64, error)
	UpsertRating(ctx context.Context, rating *activity.Rating) error
	AverageRating(ctx context.Context, templateID int64) (float64, error)
}

// Service implements the catalog business logic.
type Service struct {
	repo     Repository
	activity ActivityRepository
	cache    cache.TemplateCache
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a catalog Service. If cache is nil, caching is disabled.
func New(repo Repository, activityRepo ActivityRepository, c cache.TemplateCache, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		activity: activityRepo,
		cache:    c,
		log:      log,
		validate: validator.New(),
	}
}

const relatedLimit = 4

func summarize(t *template.Template) TemplateSummary {
	return TemplateSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Industry:    t.Industry,
		Category:    t.Category,
		FileFormat:  t.FileFormat,
		PreviewURL:  t.PreviewURL(),
		Tags:        t.Tags,
		HasFormulas: t.HasFormulas,
		IsPremium:   t.IsPremium,
		Downloads:   t.Downloads,
		Rating:      t.Rating,
	}
}

// ListTemplates retrieves one catalog page after sanitizing the search
// query.
func (s *Service) ListTemplates(ctx context.Context, in ListTemplatesRequest) (*ListTemplatesResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = 12
	}
	if in.Limit > 100 {
		in.Limit = 100
	}

	search := ""
	if strings.TrimSpace(in.Search) != "" {
		validated, err := security.ValidateSearchQuery(in.Search)
		if err != nil {
			s.log.Warn("invalid search query", zap.String("query", in.Search), zap.Error(err))
			return nil, apperrors.NewValidationError("search", err.Error())
		}
		search = security.SanitizeSearchString(validated)
	}

	filter := template.Filter{
		Industry: strings.TrimSpace(in.Industry),
		Category: strings.TrimSpace(in.Category),
		Search:   search,
	}

	templates, total, err := s.repo.List(ctx, filter, in.Page, in.Limit)
	if err != nil {
		s.log.Error("failed to list templates", zap.Error(err))
		return nil, err
	}

	summaries := make([]TemplateSummary, len(templates))
	for i := range templates {
		summaries[i] = summarize(&templates[i])
	}

	p := template.NewPagination(total, in.Page, in.Limit)
	return &ListTemplatesResponse{
		Templates: summaries,
		Pagination: Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}

// GetTemplate retrieves the detail view using cache-aside for the
// template row.
func (s *Service) GetTemplate(ctx context.Context, in GetTemplateRequest) (*GetTemplateResponse, error) {
	if in.ID <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid template id")
	}

	t, err := s.getCached(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	resp := &GetTemplateResponse{
		Template: summarize(t),
		FileSize: t.FileSize,
	}

	if in.UserID > 0 {
		fav, err := s.activity.IsFavorite(ctx, in.UserID, in.ID)
		if err != nil {
			s.log.Warn("failed to resolve favorite status", zap.Int64("template_id", in.ID), zap.Error(err))
		} else {
			resp.IsFavorite = fav
		}
	}

	related, err := s.repo.Related(ctx, t.Industry, t.ID, relatedLimit)
	if err != nil {
		s.log.Warn("failed to load related templates", zap.Int64("template_id", in.ID), zap.Error(err))
	} else {
		resp.Related = make([]TemplateSummary, len(related))
		for i := range related {
			resp.Related[i] = summarize(&related[i])
		}
	}

	return resp, nil
}

func (s *Service) getCached(ctx context.Context, id int64) (*template.Template, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, t); err != nil {
			s.log.Warn("failed to cache template", zap.Int64("id", id), zap.Error(err))
		}
	}
	return t, nil
}

// Facets lists the distinct industries and categories, cached together.
func (s *Service) Facets(ctx context.Context) (*FacetsResponse, error) {
	resp := &FacetsResponse{}

	if s.cache != nil {
		industries, err1 := s.cache.GetFacet(ctx, "industries")
		categories, err2 := s.cache.GetFacet(ctx, "categories")
		if err1 == nil && err2 == nil && industries != nil && categories != nil {
			resp.Industries = industries
			resp.Categories = categories
			return resp, nil
		}
	}

	industries, err := s.repo.Industries(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	resp.Industries = industries
	resp.Categories = categories

	if s.cache != nil {
		if err := s.cache.SetFacet(ctx, "industries", industries); err != nil {
			s.log.Warn("failed to cache industries facet", zap.Error(err))
		}
		if err := s.cache.SetFacet(ctx, "categories", categories); err != nil {
			s.log.Warn("failed to cache categories facet", zap.Error(err))
		}
	}

	return resp, nil
}

// RateTemplate stores the user's stars, recomputes the average and
// invalidates the cached template.
func (s *Service) RateTemplate(ctx context.Context, in RateTemplateRequest) (*RateTemplateResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", formatValidationError(err).Error())
	}
	if _, err := s.repo.GetByID(ctx, in.TemplateID); err != nil {
		return nil, err
	}

	rating := &activity.Rating{
		UserID:     in.UserID,
		TemplateID: in.TemplateID,
		Stars:      in.Stars,
		Review:     in.Review,
	}
	if err := s.activity.UpsertRating(ctx, rating); err != nil {
		s.log.Error("failed to store rating", zap.Int64("template_id", in.TemplateID), zap.Error(err))
		return nil, err
	}

	avg, err := s.activity.AverageRating(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRating(ctx, in.TemplateID, avg); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, in.TemplateID); err != nil {
			s.log.Warn("failed to invalidate cache after rating", zap.Int64("id", in.TemplateID), zap.Error(err))
		}
	}

	s.log.Info("template rated",
		zap.Int64("template_id", in.TemplateID),
		zap.Int64("user_id", in.UserID),
		zap.Int("stars", in.Stars))

	return &RateTemplateResponse{TemplateID: in.TemplateID, Rating: avg}, nil
}

// AddFavorite marks a template as a favorite for the user.
func (s *Service) AddFavorite(ctx context.Context, in FavoriteRequest) error {
	if in.TemplateID <= 0 {
		return apperrors.NewValidationError("template_id", "invalid template id")
	}
	if _, err := s.repo.GetByID(ctx, in.TemplateID); err != nil {
		return err
	}
	return s.activity.AddFavorite(ctx, in.UserID, in.TemplateID)
}

// RemoveFavorite unmarks a favorite.
func (s *Service) RemoveFavorite(ctx context.Context, in FavoriteRequest) error {
	if in.TemplateID <= 0 {
		return apperrors.NewValidationError("template_id", "invalid template id")
	}
	return s.activity.RemoveFavorite(ctx, in.UserID, in.TemplateID)
}

// ListFavorites returns the user's favorited templates.
func (s *Service) ListFavorites(ctx context.Context, userID int64) (*ListFavoritesResponse, error) {
	ids, err := s.activity.FavoriteTemplateIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &ListFavoritesResponse{Templates: make([]TemplateSummary, 0, len(ids))}
	for _, id := range ids {
		t, err := s.getCached(ctx, id)
		if err != nil {
			s.log.Warn("favorited template no longer loadable", zap.Int64("template_id", id), zap.Error(err))
			continue
		}
		resp.Templates = append(resp.Templates, summarize(t))
	}
	return resp, nil
}

// formatValidationError converts validator.ValidationErrors into a
// human-readable error message.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return fmt.Errorf("validation failed: %s", strings.Join(messages, ", "))
	}
	return err
}
