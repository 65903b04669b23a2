package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pmblueprints/internal/adapter/cache"
	domain "pmblueprints/internal/domain/template"
	"pmblueprints/internal/usecase/catalog"
)

// CachedTemplateRepository implements catalog.Repository with caching
// support. It wraps the persistent repository and a cache implementation.
type CachedTemplateRepository struct {
	dbRepo catalog.Repository
	cache  cache.TemplateCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewCachedTemplateRepository creates a new instance of CachedTemplateRepository.
func NewCachedTemplateRepository(dbRepo catalog.Repository, cache cache.TemplateCache, log *zap.Logger) catalog.Repository {
	return &CachedTemplateRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// GetByID retrieves a template by ID using the cache-aside pattern,
// with single-flight to prevent a thundering herd on cache misses.
func (r *CachedTemplateRepository) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	key := fmt.Sprintf("template:%d", id)
	result, err, _ := r.group.Do(key, func() (any, error) {
		// Double-check cache in case another request populated it while
		// we were waiting.
		if r.cache != nil {
			cached, err := r.cache.Get(ctx, id)
			if err == nil && cached != nil {
				return cached, nil
			}
		}

		t, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, t); err != nil {
				r.log.Warn("failed to cache template", zap.Int64("id", id), zap.Error(err))
			}
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.Template), nil
}

// List delegates to the DB repository. Pages change too often to cache.
func (r *CachedTemplateRepository) List(ctx context.Context, filter domain.Filter, page, limit int64) ([]domain.Template, int64, error) {
	return r.dbRepo.List(ctx, filter, page, limit)
}

// Related delegates to the DB repository.
func (r *CachedTemplateRepository) Related(ctx context.Context, industry string, excludeID, limit int64) ([]domain.Template, error) {
	return r.dbRepo.Related(ctx, industry, excludeID, limit)
}

// Industries delegates to the DB repository; the facet cache lives in
// the catalog service.
func (r *CachedTemplateRepository) Industries(ctx context.Context) ([]string, error) {
	return r.dbRepo.Industries(ctx)
}

// Categories delegates to the DB repository.
func (r *CachedTemplateRepository) Categories(ctx context.Context) ([]string, error) {
	return r.dbRepo.Categories(ctx)
}

// UpdateRating updates the rating in the DB and invalidates the cache.
func (r *CachedTemplateRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	if err := r.dbRepo.UpdateRating(ctx, id, rating); err != nil {
		return err
	}

	if r.cache != nil {
		if err := r.cache.Delete(ctx, id); err != nil {
			r.log.Warn("failed to invalidate cache after rating update", zap.Int64("id", id), zap.Error(err))
		}
	}
	return nil
}
