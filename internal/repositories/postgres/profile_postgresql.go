package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
)

// ProfilePostgreSQL stores per-user metadata documents. Reads are not cached:
// a stale metadata snapshot would defeat the optimistic write cycle.
type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (r *ProfilePostgreSQL) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// UpdateDocument rewrites the whole metadata document, guarded by the
// version read at fetch time.
func (r *ProfilePostgreSQL) UpdateDocument(ctx context.Context, profile *models.Profile, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ? AND version = ?", profile.UserID, expectedVersion).
		Updates(map[string]interface{}{
			"metadata":   profile.Metadata,
			"updated_at": profile.UpdatedAt,
			"version":    expectedVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", profile.UserID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check profile existence: %w", err)
		}
		if count == 0 {
			return repositories.ErrNotFound
		}
		return repositories.ErrVersionConflict
	}

	profile.Version = expectedVersion + 1
	return nil
}
