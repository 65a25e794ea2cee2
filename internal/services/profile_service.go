package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/advising-service/internal/events"
	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/reconcile"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/schema"
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type profileService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewProfileService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ProfileService {
	return &profileService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// GetMetadata returns the caller's metadata document restricted to the fields
// their current role may hold. Fields written under a role the user no longer
// has stay in storage but are not surfaced.
func (s *profileService) GetMetadata(ctx context.Context, userID string) (*MetadataResponse, error) {
	role, err := s.resolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	visible := make(map[string]interface{})
	for _, field := range schema.AllowedFields(role) {
		if value, ok := profile.Metadata[field]; ok {
			visible[field] = value
		}
	}

	return &MetadataResponse{
		UserID:   userID,
		Metadata: visible,
		Version:  profile.Version,
	}, nil
}

// UpdateMetadata merges a partial metadata payload into the caller's profile
// document. The payload is validated all-or-nothing against the whitelist for
// the user's role as resolved right now, never against the role the token was
// minted with.
func (s *profileService) UpdateMetadata(ctx context.Context, userID string, payload map[string]interface{}) (*MetadataUpdateResponse, error) {
	s.logger.Info("Updating profile metadata", "user_id", userID, "field_count", len(payload))

	role, err := s.resolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	validated, err := s.validator.ValidateMetadata(role, payload)
	if err != nil {
		return nil, err
	}
	if len(validated.Fields) == 0 {
		return nil, ErrNoValidFields
	}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		profile, err := s.repo.Profile().GetByUserID(ctx, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrProfileNotFound
			}
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		merged, updated := reconcile.MergeFields(profile.Metadata, validated.Fields)
		profile.Metadata = datatypes.JSONMap(merged)
		profile.UpdatedAt = time.Now()

		err = s.repo.Profile().UpdateDocument(ctx, profile, profile.Version)
		if repositories.IsVersionConflictError(err) {
			s.logger.Warn("Version conflict updating metadata, retrying", "user_id", userID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrProfileNotFound
			}
			return nil, fmt.Errorf("failed to update metadata: %w", err)
		}

		s.publishEvent(ctx, userID, updated)
		s.logger.Info("Metadata updated successfully", "user_id", userID, "updated", updated)

		return &MetadataUpdateResponse{
			UserID:   userID,
			Metadata: profile.Metadata,
			Updated:  updated,
			Version:  profile.Version,
		}, nil
	}

	return nil, ErrWriteConflict
}

// DeleteMetadata removes whole top-level fields from the caller's metadata.
// Fields outside the role's whitelist are rejected the same way writes are;
// deleting only absent fields leaves the document untouched and reports
// ErrNothingToDelete.
func (s *profileService) DeleteMetadata(ctx context.Context, userID string, req *DeleteMetadataRequest) (*MetadataDeleteResponse, error) {
	s.logger.Info("Deleting profile metadata fields", "user_id", userID, "fields", req.Fields)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role, err := s.resolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, field := range req.Fields {
		if !schema.IsAllowed(role, field) {
			return nil, validator.ValidationErrors{{
				Field:   field,
				Message: fmt.Sprintf("not writable by role %s", role),
				Rule:    validator.RuleFieldNotAllowed,
			}}
		}
	}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		profile, err := s.repo.Profile().GetByUserID(ctx, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrProfileNotFound
			}
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		remaining, deleted := reconcile.DeleteFields(profile.Metadata, req.Fields)
		if len(deleted) == 0 {
			return nil, ErrNothingToDelete
		}

		profile.Metadata = datatypes.JSONMap(remaining)
		profile.UpdatedAt = time.Now()

		err = s.repo.Profile().UpdateDocument(ctx, profile, profile.Version)
		if repositories.IsVersionConflictError(err) {
			s.logger.Warn("Version conflict deleting metadata, retrying", "user_id", userID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrProfileNotFound
			}
			return nil, fmt.Errorf("failed to delete metadata: %w", err)
		}

		s.publishEvent(ctx, userID, deleted)
		s.logger.Info("Metadata fields deleted successfully", "user_id", userID, "deleted", deleted)

		return &MetadataDeleteResponse{
			UserID:   userID,
			Metadata: profile.Metadata,
			Deleted:  deleted,
			Version:  profile.Version,
		}, nil
	}

	return nil, ErrWriteConflict
}

// ===== HELPER METHODS =====

// resolveRole fetches the user from the identity store so the role reflects
// any grant or revocation made after the caller's token was issued. A subject
// missing from the store is a stale identity, not a permission failure.
func (s *profileService) resolveRole(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrIdentityNotFound
		}
		return "", fmt.Errorf("failed to resolve user role: %w", err)
	}
	return user.Role, nil
}

func (s *profileService) publishEvent(ctx context.Context, userID string, touched []string) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.ProfileUpdated, events.DocumentChange{
		Collection: "profiles",
		Key:        userID,
		ChangedBy:  userID,
		Touched:    touched,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", events.ProfileUpdated, "user_id", userID, "error", err)
	}
}
