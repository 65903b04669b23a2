package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pmblueprints/internal/domain/activity"
)

// AIGenRepoPG persists AI generation and suggestion history.
type AIGenRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAIGenRepoPG creates a new instance of AIGenRepoPG.
func NewAIGenRepoPG(db *gorm.DB, log *zap.Logger) *AIGenRepoPG {
	return &AIGenRepoPG{db: db, log: log}
}

// CreateGeneration records a document generation run.
func (r *AIGenRepoPG) CreateGeneration(ctx context.Context, g *activity.Generation) (int64, error) {
	if g == nil {
		return 0, errors.New("generation cannot be nil")
	}

	model := GenerationSchema{
		UserID:       g.UserID,
		ProjectName:  g.ProjectName,
		ProjectType:  g.ProjectType,
		Industry:     g.Industry,
		Methodology:  g.Methodology,
		DocumentType: g.DocumentType,
		FileFormat:   g.FileFormat,
		Content:      g.Content,
		FileKey:      g.FileKey,
		CreatedAt:    time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to record generation", zap.Error(err), zap.Int64("user_id", g.UserID))
		return 0, fmt.Errorf("failed to record generation: %w", err)
	}

	g.ID = model.ID
	g.CreatedAt = model.CreatedAt
	return model.ID, nil
}

// ListGenerations returns a user's generation history, newest first.
func (r *AIGenRepoPG) ListGenerations(ctx context.Context, userID, limit int64) ([]activity.Generation, error) {
	var models []GenerationSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list generations", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}

	generations := make([]activity.Generation, len(models))
	for i, m := range models {
		generations[i] = activity.Generation{
			ID:           m.ID,
			UserID:       m.UserID,
			ProjectName:  m.ProjectName,
			ProjectType:  m.ProjectType,
			Industry:     m.Industry,
			Methodology:  m.Methodology,
			DocumentType: m.DocumentType,
			FileFormat:   m.FileFormat,
			Content:      m.Content,
			FileKey:      m.FileKey,
			CreatedAt:    m.CreatedAt,
		}
	}

	return generations, nil
}

// GetGeneration retrieves one generation owned by the user.
func (r *AIGenRepoPG) GetGeneration(ctx context.Context, userID, id int64) (*activity.Generation, error) {
	var model GenerationSchema
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get generation", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}

	return &activity.Generation{
		ID:           model.ID,
		UserID:       model.UserID,
		ProjectName:  model.ProjectName,
		ProjectType:  model.ProjectType,
		Industry:     model.Industry,
		Methodology:  model.Methodology,
		DocumentType: model.DocumentType,
		FileFormat:   model.FileFormat,
		Content:      model.Content,
		FileKey:      model.FileKey,
		CreatedAt:    model.CreatedAt,
	}, nil
}

// CreateSuggestion records a template suggestion request and its result.
func (r *AIGenRepoPG) CreateSuggestion(ctx context.Context, s *activity.Suggestion) (int64, error) {
	if s == nil {
		return 0, errors.New("suggestion cannot be nil")
	}

	model := SuggestionSchema{
		UserID:             s.UserID,
		ProjectDescription: s.ProjectDescription,
		Industry:           s.Industry,
		ProjectPhase:       s.ProjectPhase,
		TeamSize:           s.TeamSize,
		Suggestions:        s.Suggestions,
		CreatedAt:          time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to record suggestion", zap.Error(err), zap.Int64("user_id", s.UserID))
		return 0, fmt.Errorf("failed to record suggestion: %w", err)
	}

	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	return model.ID, nil
}

// ListSuggestions returns a user's suggestion history, newest first.
func (r *AIGenRepoPG) ListSuggestions(ctx context.Context, userID, limit int64) ([]activity.Suggestion, error) {
	var models []SuggestionSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list suggestions", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	suggestions := make([]activity.Suggestion, len(models))
	for i, m := range models {
		suggestions[i] = activity.Suggestion{
			ID:                 m.ID,
			UserID:             m.UserID,
			ProjectDescription: m.ProjectDescription,
			Industry:           m.Industry,
			ProjectPhase:       m.ProjectPhase,
			TeamSize:           m.TeamSize,
			Suggestions:        m.Suggestions,
			CreatedAt:          m.CreatedAt,
		}
	}

	return suggestions, nil
}
