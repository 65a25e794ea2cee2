package postgres

import (
	"time"

	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// documentFilters is the common shape of degree and roadmap list filters.
type documentFilters struct {
	CreatedBy *string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// ApplyDocumentFilters applies common filters to document queries
func (h *SharedHelpers) ApplyDocumentFilters(query *gorm.DB, filters documentFilters) *gorm.DB {
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"name":       true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
