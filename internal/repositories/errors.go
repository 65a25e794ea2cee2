package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a document or named sub-entity is absent.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned by conditional creates when a document
	// with the same name already exists.
	ErrDuplicateName = errors.New("name already exists")

	// ErrVersionConflict is returned by conditional writes when the stored
	// version no longer matches the one read at fetch time.
	ErrVersionConflict = errors.New("version conflict")
)

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateNameError reports whether err represents a unique-name clash.
func IsDuplicateNameError(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// IsVersionConflictError reports whether err represents a lost conditional
// write.
func IsVersionConflictError(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
