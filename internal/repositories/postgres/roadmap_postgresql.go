package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/advising-service/internal/cache"
	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
)

type RoadmapPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	helpers      *SharedHelpers
}

func NewRoadmapPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.RoadmapRepository {
	return &RoadmapPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
		helpers:      NewSharedHelpers(db),
	}
}

// Create inserts a roadmap only if no document with the same name exists.
func (r *RoadmapPostgreSQL) Create(ctx context.Context, roadmap *models.Roadmap) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(roadmap)
	if result.Error != nil {
		return fmt.Errorf("failed to create roadmap: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrDuplicateName
	}

	cache.InvalidateRoadmapCache(ctx, r.cacheManager, roadmap.Name)
	return nil
}

func (r *RoadmapPostgreSQL) GetByName(ctx context.Context, name string) (*models.Roadmap, error) {
	var roadmap models.Roadmap

	cacheKey := fmt.Sprintf("name:%s", name)
	err := r.cacheManager.Roadmap.Get(ctx, cacheKey, &roadmap)
	if err == nil {
		return &roadmap, nil
	}

	fresh, err := r.GetByNameUncached(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.cacheManager.Roadmap.Set(ctx, cacheKey, fresh, cache.RoadmapCacheConfig.TTL); err != nil {
		_ = err
	}

	return fresh, nil
}

// GetByNameUncached skips the cache; conflict-retry re-reads go through here.
func (r *RoadmapPostgreSQL) GetByNameUncached(ctx context.Context, name string) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&roadmap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return &roadmap, nil
}

func (r *RoadmapPostgreSQL) List(ctx context.Context, filters repositories.RoadmapFilters) ([]*models.Roadmap, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Roadmap{})
	query = r.helpers.ApplyDocumentFilters(query, documentFilters{
		CreatedBy: filters.CreatedBy,
		DateFrom:  filters.DateFrom,
		DateTo:    filters.DateTo,
	})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count roadmaps: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var roadmaps []*models.Roadmap
	if err := query.Find(&roadmaps).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list roadmaps: %w", err)
	}

	return roadmaps, total, nil
}

// UpdateDocument rewrites the roadmap body, guarded by the version read at
// fetch time.
func (r *RoadmapPostgreSQL) UpdateDocument(ctx context.Context, roadmap *models.Roadmap, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Roadmap{}).
		Where("name = ? AND version = ?", roadmap.Name, expectedVersion).
		Updates(map[string]interface{}{
			"body":       roadmap.Body,
			"updated_at": roadmap.UpdatedAt,
			"version":    expectedVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update roadmap: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.ExistsByName(ctx, roadmap.Name)
		if err != nil {
			return err
		}
		if !exists {
			return repositories.ErrNotFound
		}
		return repositories.ErrVersionConflict
	}

	roadmap.Version = expectedVersion + 1
	cache.InvalidateRoadmapCache(ctx, r.cacheManager, roadmap.Name)
	return nil
}

func (r *RoadmapPostgreSQL) Delete(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Roadmap{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete roadmap: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateRoadmapCache(ctx, r.cacheManager, name)
	return nil
}

func (r *RoadmapPostgreSQL) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Roadmap{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check roadmap existence: %w", err)
	}
	return count > 0, nil
}
