package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/advising-service/internal/events"
	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/reconcile"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type roadmapService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewRoadmapService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) RoadmapService {
	return &roadmapService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *roadmapService) Create(ctx context.Context, req *CreateRoadmapRequest, creatorID string) (*RoadmapResponse, error) {
	s.logger.Info("Creating roadmap", "creator_id", creatorID, "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	body := req.Body
	if body == nil {
		body = models.RoadmapBody{}
	}

	now := time.Now()
	roadmap := &models.Roadmap{
		Name:      req.Name,
		Body:      datatypes.NewJSONType(body),
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	if err := s.repo.Roadmap().Create(ctx, roadmap); err != nil {
		if repositories.IsDuplicateNameError(err) {
			return nil, ErrRoadmapExists
		}
		return nil, fmt.Errorf("failed to create roadmap: %w", err)
	}

	s.publishEvent(ctx, events.RoadmapCreated, roadmap.Name, creatorID, nil)
	s.logger.Info("Roadmap created successfully", "name", roadmap.Name, "section_count", len(body))

	return &RoadmapResponse{Roadmap: roadmap, CanEdit: true}, nil
}

func (s *roadmapService) GetByName(ctx context.Context, name string, userID string) (*RoadmapResponse, error) {
	roadmap, err := s.repo.Roadmap().GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}

	return s.buildRoadmapResponse(ctx, roadmap, userID), nil
}

func (s *roadmapService) List(ctx context.Context, filters repositories.RoadmapFilters, userID string) (*RoadmapListResponse, error) {
	roadmaps, total, err := s.repo.Roadmap().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}

	response := &RoadmapListResponse{
		Roadmaps: make([]*RoadmapResponse, len(roadmaps)),
		Total:    total,
		Page:     (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:     filters.Limit,
	}
	for i, roadmap := range roadmaps {
		response.Roadmaps[i] = s.buildRoadmapResponse(ctx, roadmap, userID)
	}

	return response, nil
}

func (s *roadmapService) Delete(ctx context.Context, name string, userID string) error {
	s.logger.Info("Deleting roadmap", "name", name, "user_id", userID)

	if err := s.requireAdmin(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.Roadmap().Delete(ctx, name); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRoadmapNotFound
		}
		return fmt.Errorf("failed to delete roadmap: %w", err)
	}

	s.publishEvent(ctx, events.RoadmapDeleted, name, userID, nil)
	return nil
}

// ===== SECTION RECONCILIATION =====

// PatchSection merges topic updates into one section of the roadmap body.
// The merge is one level deep: a topic named in the patch replaces the stored
// topic wholesale. Patching a section that does not exist is an error, it is
// never created implicitly.
func (s *roadmapService) PatchSection(ctx context.Context, name, section string, req *PatchSectionRequest, userID string) (*SectionChangeResponse, error) {
	s.logger.Info("Patching roadmap section", "name", name, "section", section, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		roadmap, err := s.fetchForWrite(ctx, name, attempt)
		if err != nil {
			return nil, err
		}

		patched, err := reconcile.PatchSection(roadmap.Body.Data(), section, req.Topics)
		if err != nil {
			if errors.Is(err, reconcile.ErrUnknownSection) {
				return nil, ErrSectionNotFound
			}
			return nil, fmt.Errorf("failed to patch section: %w", err)
		}

		roadmap.Body = datatypes.NewJSONType(models.RoadmapBody(patched))
		roadmap.UpdatedAt = time.Now()

		err = s.repo.Roadmap().UpdateDocument(ctx, roadmap, roadmap.Version)
		if repositories.IsVersionConflictError(err) {
			s.logger.Warn("Version conflict patching section, retrying", "name", name, "attempt", attempt+1)
			continue
		}
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrRoadmapNotFound
			}
			return nil, fmt.Errorf("failed to update roadmap: %w", err)
		}

		topics := make([]string, 0, len(req.Topics))
		for topic := range req.Topics {
			topics = append(topics, topic)
		}

		s.publishEvent(ctx, events.RoadmapUpdated, name, userID, topics)
		s.logger.Info("Section patched successfully", "name", name, "section", section, "topic_count", len(topics))

		return &SectionChangeResponse{Roadmap: roadmap, Section: section, Topics: topics}, nil
	}

	return nil, ErrWriteConflict
}

// DeleteSection removes a whole section and every topic under it. Deleting
// the last section leaves an empty body, which stays a valid document.
func (s *roadmapService) DeleteSection(ctx context.Context, name, section string, userID string) (*SectionChangeResponse, error) {
	s.logger.Info("Deleting roadmap section", "name", name, "section", section, "user_id", userID)

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		roadmap, err := s.fetchForWrite(ctx, name, attempt)
		if err != nil {
			return nil, err
		}

		remaining, err := reconcile.DeleteSection(roadmap.Body.Data(), section)
		if err != nil {
			if errors.Is(err, reconcile.ErrUnknownSection) {
				return nil, ErrSectionNotFound
			}
			return nil, fmt.Errorf("failed to delete section: %w", err)
		}

		roadmap.Body = datatypes.NewJSONType(models.RoadmapBody(remaining))
		roadmap.UpdatedAt = time.Now()

		err = s.repo.Roadmap().UpdateDocument(ctx, roadmap, roadmap.Version)
		if repositories.IsVersionConflictError(err) {
			s.logger.Warn("Version conflict deleting section, retrying", "name", name, "attempt", attempt+1)
			continue
		}
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrRoadmapNotFound
			}
			return nil, fmt.Errorf("failed to update roadmap: %w", err)
		}

		s.publishEvent(ctx, events.RoadmapUpdated, name, userID, []string{section})
		s.logger.Info("Section deleted successfully", "name", name, "section", section)

		return &SectionChangeResponse{Roadmap: roadmap, Section: section}, nil
	}

	return nil, ErrWriteConflict
}

// ===== HELPER METHODS =====

// fetchForWrite reads the roadmap opening a read-merge-write cycle; retries
// after a version conflict bypass the cache.
func (s *roadmapService) fetchForWrite(ctx context.Context, name string, attempt int) (*models.Roadmap, error) {
	var roadmap *models.Roadmap
	var err error
	if attempt == 0 {
		roadmap, err = s.repo.Roadmap().GetByName(ctx, name)
	} else {
		roadmap, err = s.repo.Roadmap().GetByNameUncached(ctx, name)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return roadmap, nil
}

func (s *roadmapService) requireAdmin(ctx context.Context, userID string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("failed to resolve user role: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return NewPermissionError(userID, "roadmap", "delete", "requires ADMIN role")
	}
	return nil
}

func (s *roadmapService) buildRoadmapResponse(ctx context.Context, roadmap *models.Roadmap, userID string) *RoadmapResponse {
	canEdit := false
	if user, err := s.repo.User().GetByID(ctx, userID); err == nil {
		canEdit = user.Role == models.RoleAdmin
	}
	return &RoadmapResponse{Roadmap: roadmap, CanEdit: canEdit}
}

func (s *roadmapService) publishEvent(ctx context.Context, eventType, key, userID string, touched []string) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(eventType, events.DocumentChange{
		Collection: "roadmaps",
		Key:        key,
		ChangedBy:  userID,
		Touched:    touched,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "key", key, "error", err)
	}
}
