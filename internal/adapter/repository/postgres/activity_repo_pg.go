package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pmblueprints/internal/domain/activity"
	apperrors "pmblueprints/pkg/errors"
)

// ActivityRepoPG persists download history, favorites and ratings.
type ActivityRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewActivityRepoPG creates a new instance of ActivityRepoPG.
func NewActivityRepoPG(db *gorm.DB, log *zap.Logger) *ActivityRepoPG {
	return &ActivityRepoPG{db: db, log: log}
}

// RecordDownload appends a download to the user's history.
func (r *ActivityRepoPG) RecordDownload(ctx context.Context, userID, templateID int64) error {
	model := DownloadSchema{
		UserID:       userID,
		TemplateID:   templateID,
		DownloadedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to record download", zap.Error(err),
			zap.Int64("user_id", userID), zap.Int64("template_id", templateID))
		return fmt.Errorf("failed to record download: %w", err)
	}

	return nil
}

// RecentDownloads returns the user's latest downloads, newest first.
func (r *ActivityRepoPG) RecentDownloads(ctx context.Context, userID, limit int64) ([]activity.Download, error) {
	var models []DownloadSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("downloaded_at DESC").
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list downloads", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}

	downloads := make([]activity.Download, len(models))
	for i, m := range models {
		downloads[i] = activity.Download{
			ID:           m.ID,
			UserID:       m.UserID,
			TemplateID:   m.TemplateID,
			DownloadedAt: m.DownloadedAt,
		}
	}

	return downloads, nil
}

// AddFavorite marks a template as a favorite. Adding twice is a no-op.
func (r *ActivityRepoPG) AddFavorite(ctx context.Context, userID, templateID int64) error {
	model := FavoriteSchema{
		UserID:     userID,
		TemplateID: templateID,
		CreatedAt:  time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		FirstOrCreate(&model).Error
	if err != nil {
		r.log.Error("failed to add favorite", zap.Error(err),
			zap.Int64("user_id", userID), zap.Int64("template_id", templateID))
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

// RemoveFavorite removes a favorite mark if present.
func (r *ActivityRepoPG) RemoveFavorite(ctx context.Context, userID, templateID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Delete(&FavoriteSchema{}).Error
	if err != nil {
		r.log.Error("failed to remove favorite", zap.Error(err),
			zap.Int64("user_id", userID), zap.Int64("template_id", templateID))
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	return nil
}

// IsFavorite reports whether the user favorited a template.
func (r *ActivityRepoPG) IsFavorite(ctx context.Context, userID, templateID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&FavoriteSchema{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// FavoriteTemplateIDs returns the IDs of every template the user favorited.
func (r *ActivityRepoPG) FavoriteTemplateIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&FavoriteSchema{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("template_id", &ids).Error
	if err != nil {
		r.log.Error("failed to list favorites", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

// UpsertRating stores a user's star rating for a template, replacing any
// previous rating by the same user.
func (r *ActivityRepoPG) UpsertRating(ctx context.Context, rating *activity.Rating) error {
	if rating == nil {
		return errors.New("rating cannot be nil")
	}

	now := time.Now().UTC()

	var existing RatingSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", rating.UserID, rating.TemplateID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Stars = rating.Stars
		existing.Review = rating.Review
		existing.UpdatedAt = now
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			r.log.Error("failed to update rating", zap.Error(err), zap.Int64("id", existing.ID))
			return fmt.Errorf("failed to update rating: %w", err)
		}
		rating.ID = existing.ID
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		model := RatingSchema{
			UserID:     rating.UserID,
			TemplateID: rating.TemplateID,
			Stars:      rating.Stars,
			Review:     rating.Review,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			r.log.Error("failed to create rating", zap.Error(err),
				zap.Int64("user_id", rating.UserID), zap.Int64("template_id", rating.TemplateID))
			return fmt.Errorf("failed to create rating: %w", err)
		}
		rating.ID = model.ID
		return nil
	default:
		return fmt.Errorf("failed to look up rating: %w", err)
	}
}

// AverageRating computes the mean star rating of a template. Returns 0
// when the template has no ratings yet.
func (r *ActivityRepoPG) AverageRating(ctx context.Context, templateID int64) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&RatingSchema{}).
		Where("template_id = ?", templateID).
		Select("AVG(stars)").
		Scan(&avg).Error
	if err != nil {
		r.log.Error("failed to compute average rating", zap.Error(err), zap.Int64("template_id", templateID))
		return 0, fmt.Errorf("failed to compute average rating: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// RatingFor returns a user's rating of a template, if they left one.
func (r *ActivityRepoPG) RatingFor(ctx context.Context, userID, templateID int64) (*activity.Rating, error) {
	var model RatingSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("rating", "rating not found")
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return &activity.Rating{
		ID:         model.ID,
		UserID:     model.UserID,
		TemplateID: model.TemplateID,
		Stars:      model.Stars,
		Review:     model.Review,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}, nil
}
