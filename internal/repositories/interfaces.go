package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/advising-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type DegreeFilters struct {
	CreatedBy *string    `json:"created_by"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "name"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type RoadmapFilters struct {
	CreatedBy *string    `json:"created_by"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// ===== DOCUMENT REPOSITORIES =====

// DegreeRepository is the document gateway for degree curricula. Create is a
// conditional "insert if absent"; UpdateDocument is a conditional write
// against the version read at fetch time.
type DegreeRepository interface {
	Create(ctx context.Context, degree *models.Degree) error
	GetByName(ctx context.Context, name string) (*models.Degree, error)
	// GetByNameUncached reads straight from the database. Conflict-retry
	// cycles use it so a stale cached snapshot cannot keep losing the
	// version check.
	GetByNameUncached(ctx context.Context, name string) (*models.Degree, error)
	List(ctx context.Context, filters DegreeFilters) ([]*models.Degree, int64, error)
	UpdateDocument(ctx context.Context, degree *models.Degree, expectedVersion int) error
	Delete(ctx context.Context, name string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// RoadmapRepository is the document gateway for career roadmaps.
type RoadmapRepository interface {
	Create(ctx context.Context, roadmap *models.Roadmap) error
	GetByName(ctx context.Context, name string) (*models.Roadmap, error)
	GetByNameUncached(ctx context.Context, name string) (*models.Roadmap, error)
	List(ctx context.Context, filters RoadmapFilters) ([]*models.Roadmap, int64, error)
	UpdateDocument(ctx context.Context, roadmap *models.Roadmap, expectedVersion int) error
	Delete(ctx context.Context, name string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// ProfileRepository is the document gateway for per-user metadata documents.
// Rows are created at registration, outside this service; this interface
// only reads and conditionally rewrites them.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateDocument(ctx context.Context, profile *models.Profile, expectedVersion int) error
}
