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

type DegreePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	helpers      *SharedHelpers
}

func NewDegreePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.DegreeRepository {
	return &DegreePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
		helpers:      NewSharedHelpers(db),
	}
}

// Create inserts a degree only if no document with the same name exists.
// The insert-if-absent is a single statement so there is no window between
// the existence check and the write.
func (r *DegreePostgreSQL) Create(ctx context.Context, degree *models.Degree) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(degree)
	if result.Error != nil {
		return fmt.Errorf("failed to create degree: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrDuplicateName
	}

	cache.InvalidateDegreeCache(ctx, r.cacheManager, degree.Name)
	return nil
}

func (r *DegreePostgreSQL) GetByName(ctx context.Context, name string) (*models.Degree, error) {
	var degree models.Degree

	cacheKey := fmt.Sprintf("name:%s", name)
	err := r.cacheManager.Degree.Get(ctx, cacheKey, &degree)
	if err == nil {
		return &degree, nil
	}

	fresh, err := r.GetByNameUncached(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.cacheManager.Degree.Set(ctx, cacheKey, fresh, cache.DegreeCacheConfig.TTL); err != nil {
		// Cache failures never fail a read
		_ = err
	}

	return fresh, nil
}

// GetByNameUncached skips the cache entirely. The conditional-write retry
// cycle reads through here, so a stale cached snapshot left behind by a
// failed invalidation cannot exhaust the retries.
func (r *DegreePostgreSQL) GetByNameUncached(ctx context.Context, name string) (*models.Degree, error) {
	var degree models.Degree
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&degree).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get degree: %w", err)
	}
	return &degree, nil
}

func (r *DegreePostgreSQL) List(ctx context.Context, filters repositories.DegreeFilters) ([]*models.Degree, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Degree{})
	query = r.helpers.ApplyDocumentFilters(query, documentFilters{
		CreatedBy: filters.CreatedBy,
		DateFrom:  filters.DateFrom,
		DateTo:    filters.DateTo,
	})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count degrees: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var degrees []*models.Degree
	if err := query.Find(&degrees).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list degrees: %w", err)
	}

	return degrees, total, nil
}

// UpdateDocument rewrites the degree's subject list and timestamps, guarded
// by the version read at fetch time. Zero rows affected means either a
// concurrent writer advanced the version or the document is gone.
func (r *DegreePostgreSQL) UpdateDocument(ctx context.Context, degree *models.Degree, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Degree{}).
		Where("name = ? AND version = ?", degree.Name, expectedVersion).
		Updates(map[string]interface{}{
			"subjects":   degree.Subjects,
			"updated_at": degree.UpdatedAt,
			"version":    expectedVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update degree: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.ExistsByName(ctx, degree.Name)
		if err != nil {
			return err
		}
		if !exists {
			return repositories.ErrNotFound
		}
		return repositories.ErrVersionConflict
	}

	degree.Version = expectedVersion + 1
	cache.InvalidateDegreeCache(ctx, r.cacheManager, degree.Name)
	return nil
}

func (r *DegreePostgreSQL) Delete(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Degree{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete degree: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateDegreeCache(ctx, r.cacheManager, name)
	return nil
}

func (r *DegreePostgreSQL) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Degree{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check degree existence: %w", err)
	}
	return count > 0, nil
}
