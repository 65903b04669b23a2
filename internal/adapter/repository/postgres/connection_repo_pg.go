package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pmblueprints/internal/domain/integration"
	apperrors "pmblueprints/pkg/errors"
)

// ConnectionRepoPG persists OAuth platform connections.
type ConnectionRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewConnectionRepoPG creates a new instance of ConnectionRepoPG.
func NewConnectionRepoPG(db *gorm.DB, log *zap.Logger) *ConnectionRepoPG {
	return &ConnectionRepoPG{db: db, log: log}
}

func schemaToConnection(m *ConnectionSchema) *integration.Connection {
	return &integration.Connection{
		ID:           m.ID,
		UserID:       m.UserID,
		Platform:     m.Platform,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Upsert stores a connection, replacing any previous grant for the same
// user and platform.
func (r *ConnectionRepoPG) Upsert(ctx context.Context, c *integration.Connection) error {
	if c == nil {
		return errors.New("connection cannot be nil")
	}

	now := time.Now().UTC()

	var existing ConnectionSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", c.UserID, c.Platform).
		First(&existing).Error
	switch {
	case err == nil:
		existing.AccessToken = c.AccessToken
		existing.RefreshToken = c.RefreshToken
		existing.ExpiresAt = c.ExpiresAt
		existing.UpdatedAt = now
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			r.log.Error("failed to update platform connection", zap.Error(err),
				zap.Int64("user_id", c.UserID), zap.String("platform", c.Platform))
			return fmt.Errorf("failed to update platform connection: %w", err)
		}
		c.ID = existing.ID
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		model := ConnectionSchema{
			UserID:       c.UserID,
			Platform:     c.Platform,
			AccessToken:  c.AccessToken,
			RefreshToken: c.RefreshToken,
			ExpiresAt:    c.ExpiresAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			r.log.Error("failed to create platform connection", zap.Error(err),
				zap.Int64("user_id", c.UserID), zap.String("platform", c.Platform))
			return fmt.Errorf("failed to create platform connection: %w", err)
		}
		c.ID = model.ID
		return nil
	default:
		return fmt.Errorf("failed to look up platform connection: %w", err)
	}
}

// Get retrieves the user's connection for a platform.
func (r *ConnectionRepoPG) Get(ctx context.Context, userID int64, platform string) (*integration.Connection, error) {
	var model ConnectionSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("connection", fmt.Sprintf("%s is not connected", platform))
		}
		r.log.Error("failed to get platform connection", zap.Error(err),
			zap.Int64("user_id", userID), zap.String("platform", platform))
		return nil, fmt.Errorf("failed to get platform connection: %w", err)
	}

	return schemaToConnection(&model), nil
}

// Delete removes the user's connection for a platform.
func (r *ConnectionRepoPG) Delete(ctx context.Context, userID int64, platform string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		Delete(&ConnectionSchema{}).Error
	if err != nil {
		r.log.Error("failed to delete platform connection", zap.Error(err),
			zap.Int64("user_id", userID), zap.String("platform", platform))
		return fmt.Errorf("failed to delete platform connection: %w", err)
	}
	return nil
}

// ListByUser returns every platform connection the user holds.
func (r *ConnectionRepoPG) ListByUser(ctx context.Context, userID int64) ([]integration.Connection, error) {
	var models []ConnectionSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("platform ASC").
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list platform connections", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list platform connections: %w", err)
	}

	connections := make([]integration.Connection, len(models))
	for i := range models {
		connections[i] = *schemaToConnection(&models[i])
	}
	return connections, nil
}
