package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pmblueprints/internal/domain/template"
	apperrors "pmblueprints/pkg/errors"
)

// TemplateRepoPG implements the template repository interfaces using
// PostgreSQL and GORM.
type TemplateRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewTemplateRepoPG creates a new instance of TemplateRepoPG.
func NewTemplateRepoPG(db *gorm.DB, log *zap.Logger) *TemplateRepoPG {
	return &TemplateRepoPG{db: db, log: log}
}

func templateToSchema(t *template.Template) TemplateSchema {
	return TemplateSchema{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Industry:    t.Industry,
		Category:    t.Category,
		FileFormat:  t.FileFormat,
		FileKey:     t.FileKey,
		PreviewKey:  t.PreviewKey,
		CDNURL:      t.CDNURL,
		FileSize:    t.FileSize,
		Tags:        strings.Join(t.Tags, ","),
		HasFormulas: t.HasFormulas,
		IsPremium:   t.IsPremium,
		Downloads:   t.Downloads,
		Rating:      t.Rating,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func schemaToTemplate(m *TemplateSchema) *template.Template {
	var tags []string
	if m.Tags != "" {
		tags = strings.Split(m.Tags, ",")
	}
	return &template.Template{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Industry:    m.Industry,
		Category:    m.Category,
		FileFormat:  m.FileFormat,
		FileKey:     m.FileKey,
		PreviewKey:  m.PreviewKey,
		CDNURL:      m.CDNURL,
		FileSize:    m.FileSize,
		Tags:        tags,
		HasFormulas: m.HasFormulas,
		IsPremium:   m.IsPremium,
		Downloads:   m.Downloads,
		Rating:      m.Rating,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// Create inserts a new template into the catalog.
func (r *TemplateRepoPG) Create(ctx context.Context, t *template.Template) (int64, error) {
	if t == nil {
		return 0, errors.New("template cannot be nil")
	}

	model := templateToSchema(t)
	now := time.Now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create template in db", zap.Error(err), zap.String("name", t.Name))
		return 0, fmt.Errorf("failed to create template: %w", err)
	}

	t.ID = model.ID
	return model.ID, nil
}

// GetByID retrieves a template by its unique ID.
func (r *TemplateRepoPG) GetByID(ctx context.Context, id int64) (*template.Template, error) {
	var model TemplateSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("template not found", zap.Int64("id", id))
			return nil, apperrors.NewNotFoundError("template", fmt.Sprintf("template not found: id=%d", id))
		}
		r.log.Error("failed to get template from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return schemaToTemplate(&model), nil
}

// GetByName retrieves a template by exact name, used for idempotent seeding.
func (r *TemplateRepoPG) GetByName(ctx context.Context, name string) (*template.Template, error) {
	var model TemplateSchema
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get template by name", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("failed to get template by name: %w", err)
	}

	return schemaToTemplate(&model), nil
}

// List retrieves templates matching the filter with pagination, ordered
// by download count so popular templates surface first. Returns the
// page of templates and the total match count.
func (r *TemplateRepoPG) List(ctx context.Context, filter template.Filter, page, limit int64) ([]template.Template, int64, error) {
	q := r.db.WithContext(ctx).Model(&TemplateSchema{})

	if filter.Industry != "" {
		q = q.Where("industry = ?", filter.Industry)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ? OR tags LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.log.Error("failed to count templates", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	var models []TemplateSchema
	err := q.Order("downloads DESC, id ASC").
		Offset(int((page - 1) * limit)).
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list templates from db", zap.Error(err),
			zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make([]template.Template, len(models))
	for i := range models {
		templates[i] = *schemaToTemplate(&models[i])
	}

	return templates, total, nil
}

// Related retrieves up to limit templates sharing an industry, excluding
// the template being viewed.
func (r *TemplateRepoPG) Related(ctx context.Context, industry string, excludeID, limit int64) ([]template.Template, error) {
	var models []TemplateSchema
	err := r.db.WithContext(ctx).
		Where("industry = ? AND id <> ?", industry, excludeID).
		Order("downloads DESC").
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list related templates", zap.Error(err), zap.String("industry", industry))
		return nil, fmt.Errorf("failed to list related templates: %w", err)
	}

	templates := make([]template.Template, len(models))
	for i := range models {
		templates[i] = *schemaToTemplate(&models[i])
	}

	return templates, nil
}

// Industries returns the distinct industries present in the catalog.
func (r *TemplateRepoPG) Industries(ctx context.Context) ([]string, error) {
	var industries []string
	err := r.db.WithContext(ctx).Model(&TemplateSchema{}).
		Distinct("industry").
		Order("industry ASC").
		Pluck("industry", &industries).Error
	if err != nil {
		r.log.Error("failed to list industries", zap.Error(err))
		return nil, fmt.Errorf("failed to list industries: %w", err)
	}
	return industries, nil
}

// Categories returns the distinct categories present in the catalog.
func (r *TemplateRepoPG) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&TemplateSchema{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		r.log.Error("failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// IncrementDownloads bumps the all-time download counter of a template.
func (r *TemplateRepoPG) IncrementDownloads(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Model(&TemplateSchema{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
	if err != nil {
		r.log.Error("failed to increment template downloads", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to increment template downloads: %w", err)
	}
	return nil
}

// UpdateRating stores the recomputed average star rating of a template.
func (r *TemplateRepoPG) UpdateRating(ctx context.Context, id int64, rating float64) error {
	err := r.db.WithContext(ctx).Model(&TemplateSchema{}).
		Where("id = ?", id).
		UpdateColumn("rating", rating).Error
	if err != nil {
		r.log.Error("failed to update template rating", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to update template rating: %w", err)
	}
	return nil
}

// UpdateCategory reassigns a template to a category, used by catalog
// maintenance tooling.
func (r *TemplateRepoPG) UpdateCategory(ctx context.Context, id int64, category string) error {
	err := r.db.WithContext(ctx).Model(&TemplateSchema{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"category": category, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		r.log.Error("failed to update template category", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to update template category: %w", err)
	}
	return nil
}

// UpdateAssetKeys stores the storage keys produced by asset uploads.
func (r *TemplateRepoPG) UpdateAssetKeys(ctx context.Context, id int64, fileKey, previewKey string, fileSize int64) error {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if fileKey != "" {
		updates["file_key"] = fileKey
	}
	if previewKey != "" {
		updates["preview_key"] = previewKey
	}
	if fileSize > 0 {
		updates["file_size"] = fileSize
	}

	err := r.db.WithContext(ctx).Model(&TemplateSchema{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		r.log.Error("failed to update template asset keys", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to update template asset keys: %w", err)
	}
	return nil
}

// All streams the full catalog, used by maintenance commands.
func (r *TemplateRepoPG) All(ctx context.Context) ([]template.Template, error) {
	var models []TemplateSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		r.log.Error("failed to load full catalog", zap.Error(err))
		return nil, fmt.Errorf("failed to load full catalog: %w", err)
	}

	templates := make([]template.Template, len(models))
	for i := range models {
		templates[i] = *schemaToTemplate(&models[i])
	}
	return templates, nil
}
