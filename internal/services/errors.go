package services

import (
	"errors"
	"fmt"
)

var (
	ErrDegreeNotFound  = errors.New("degree not found")
	ErrRoadmapNotFound = errors.New("roadmap not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrDegreeExists    = errors.New("degree with this name already exists")
	ErrRoadmapExists   = errors.New("roadmap with this name already exists")
	ErrNothingToDelete = errors.New("no matching entries to delete")
	ErrNoValidFields   = errors.New("no valid fields to update")
	ErrWriteConflict   = errors.New("document was modified concurrently, retries exhausted")

	// ErrIdentityNotFound means the authenticated subject no longer exists
	// in the identity store. Handlers answer 401, the same as a stale token.
	ErrIdentityNotFound = errors.New("identity not found in user store")
)

// maxWriteRetries bounds the read-merge-write cycle when a concurrent
// writer bumps the document version between our read and our write.
const maxWriteRetries = 3

// PermissionError signals that the caller's resolved role does not
// permit the attempted operation.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// IsPermissionError reports whether err is a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
