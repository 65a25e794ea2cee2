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
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type degreeService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewDegreeService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) DegreeService {
	return &degreeService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *degreeService) Create(ctx context.Context, req *CreateDegreeRequest, creatorID string) (*DegreeResponse, error) {
	s.logger.Info("Creating degree", "creator_id", creatorID, "name", req.Name)

	// Validate request
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	subjects := make([]models.Subject, len(req.Subjects))
	for i, p := range req.Subjects {
		subjects[i] = models.Subject{
			Name:      p.Name,
			Mention:   p.Mention,
			Credits:   p.Credits,
			Label:     p.Label,
			Type:      p.Type,
			Skills:    p.Skills,
			Year:      p.Year,
			UpdatedAt: now,
		}
	}

	degree := &models.Degree{
		Name:      req.Name,
		Subjects:  datatypes.JSONSlice[models.Subject](subjects),
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	// Insert is conditional on the name not existing; a concurrent create
	// of the same name loses without clobbering the winner.
	if err := s.repo.Degree().Create(ctx, degree); err != nil {
		if repositories.IsDuplicateNameError(err) {
			return nil, ErrDegreeExists
		}
		return nil, fmt.Errorf("failed to create degree: %w", err)
	}

	s.publishEvent(ctx, events.DegreeCreated, degree.Name, creatorID, nil)
	s.logger.Info("Degree created successfully", "name", degree.Name, "subject_count", len(subjects))

	return &DegreeResponse{Degree: degree, CanEdit: true}, nil
}

func (s *degreeService) GetByName(ctx context.Context, name string, userID string) (*DegreeResponse, error) {
	degree, err := s.repo.Degree().GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDegreeNotFound
		}
		return nil, fmt.Errorf("failed to get degree: %w", err)
	}

	return s.buildDegreeResponse(ctx, degree, userID), nil
}

func (s *degreeService) List(ctx context.Context, filters repositories.DegreeFilters, userID string) (*DegreeListResponse, error) {
	degrees, total, err := s.repo.Degree().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list degrees: %w", err)
	}

	response := &DegreeListResponse{
		Degrees: make([]*DegreeResponse, len(degrees)),
		Total:   total,
		Page:    (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:    filters.Limit,
	}
	for i, degree := range degrees {
		response.Degrees[i] = s.buildDegreeResponse(ctx, degree, userID)
	}

	return response, nil
}

func (s *degreeService) Delete(ctx context.Context, name string, userID string) error {
	s.logger.Info("Deleting degree", "name", name, "user_id", userID)

	if err := s.requireAdmin(ctx, userID, "degree"); err != nil {
		return err
	}

	if err := s.repo.Degree().Delete(ctx, name); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDegreeNotFound
		}
		return fmt.Errorf("failed to delete degree: %w", err)
	}

	s.publishEvent(ctx, events.DegreeDeleted, name, userID, nil)
	return nil
}

// ===== SUBJECT RECONCILIATION =====

// UpdateSubjects merges partial subject patches into the curriculum, matched
// by subject name. Names with no match are reported back, never inserted.
// The write is conditional on the version read in the same cycle and retried
// on conflict.
func (s *degreeService) UpdateSubjects(ctx context.Context, name string, req *UpdateSubjectsRequest, userID string) (*SubjectsUpdateResponse, error) {
	s.logger.Info("Updating degree subjects", "name", name, "user_id", userID, "update_count", len(req.Subjects))

	// Validate request; any malformed entry rejects the whole payload
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		degree, err := s.fetchForWrite(ctx, name, attempt)
		if err != nil {
			return nil, err
		}

		merged, touched, skipped := reconcile.MergeKeyed(
			[]models.Subject(degree.Subjects),
			req.Subjects,
			func(sub models.Subject) string { return sub.Name },
			func(upd validator.SubjectUpdate) string { return upd.Name },
			applySubjectUpdate,
		)

		if len(touched) == 0 {
			// Nothing matched, so there is nothing to persist
			return &SubjectsUpdateResponse{Degree: degree, Updated: []string{}, Skipped: skipped}, nil
		}

		degree.Subjects = datatypes.JSONSlice[models.Subject](merged)
		degree.UpdatedAt = time.Now()

		err = s.repo.Degree().UpdateDocument(ctx, degree, degree.Version)
		if repositories.IsVersionConflictError(err) {
			s.logger.Warn("Version conflict updating subjects, retrying", "name", name, "attempt", attempt+1)
			continue
		}
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrDegreeNotFound
			}
			return nil, fmt.Errorf("failed to update subjects: %w", err)
		}

		s.publishEvent(ctx, events.DegreeUpdated, name, userID, touched)
		s.logger.Info("Subjects updated successfully", "name", name, "updated", len(touched), "skipped", len(skipped))

		return &SubjectsUpdateResponse{Degree: degree, Updated: touched, Skipped: skipped}, nil
	}

	return nil, ErrWriteConflict
}

// DeleteSubjects removes the named subjects from the curriculum. When none of
// the names match, the document is left untouched and the caller gets
// ErrNothingToDelete.
func (s *degreeService) DeleteSubjects(ctx context.Context, name string, req *DeleteSubjectsRequest, userID string) (*SubjectsDeleteResponse, error) {
	s.logger.Info("Deleting degree subjects", "name", name, "user_id", userID, "names", req.Names)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		degree, err := s.fetchForWrite(ctx, name, attempt)
		if err != nil {
			return nil, err
		}

		remaining, deleted := reconcile.DeleteKeyed(
			[]models.Subject(degree.Subjects),
			req.Names,
			func(sub models.Subject) string { return sub.Name },
		)
		if len(deleted) == 0 {
			return nil, ErrNothingToDelete
		}

		degree.Subjects = datatypes.JSONSlice[models.Subject](remaining)
		degree.UpdatedAt = time.Now()

		err = s.repo.Degree().UpdateDocument(ctx, degree, degree.Version)
		if repositories.IsVersionConflictError(err) {
			s.logger.Warn("Version conflict deleting subjects, retrying", "name", name, "attempt", attempt+1)
			continue
		}
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrDegreeNotFound
			}
			return nil, fmt.Errorf("failed to delete subjects: %w", err)
		}

		s.publishEvent(ctx, events.DegreeUpdated, name, userID, deleted)
		s.logger.Info("Subjects deleted successfully", "name", name, "deleted", len(deleted))

		return &SubjectsDeleteResponse{Degree: degree, Deleted: deleted}, nil
	}

	return nil, ErrWriteConflict
}

// ===== HELPER METHODS =====

// applySubjectUpdate folds a partial patch into an existing subject. Nil
// pointers leave the field untouched; a nil skills slice means "keep".
func applySubjectUpdate(existing models.Subject, upd validator.SubjectUpdate) models.Subject {
	if upd.Mention != nil {
		existing.Mention = *upd.Mention
	}
	if upd.Credits != nil {
		existing.Credits = *upd.Credits
	}
	if upd.Label != nil {
		existing.Label = *upd.Label
	}
	if upd.Type != nil {
		existing.Type = *upd.Type
	}
	if upd.Skills != nil {
		existing.Skills = upd.Skills
	}
	if upd.Year != nil {
		existing.Year = *upd.Year
	}
	existing.UpdatedAt = time.Now()
	return existing
}

// fetchForWrite reads the document opening a read-merge-write cycle. The
// first attempt may come from the cache; once a version conflict forced a
// retry the read goes straight to the database, so a stale cached snapshot
// cannot burn every retry.
func (s *degreeService) fetchForWrite(ctx context.Context, name string, attempt int) (*models.Degree, error) {
	var degree *models.Degree
	var err error
	if attempt == 0 {
		degree, err = s.repo.Degree().GetByName(ctx, name)
	} else {
		degree, err = s.repo.Degree().GetByNameUncached(ctx, name)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDegreeNotFound
		}
		return nil, fmt.Errorf("failed to get degree: %w", err)
	}
	return degree, nil
}

// requireAdmin re-checks the caller's live role before a wholesale delete.
// The route middleware enforces this too; the service does not trust its
// callers to have gone through it.
func (s *degreeService) requireAdmin(ctx context.Context, userID, resource string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("failed to resolve user role: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return NewPermissionError(userID, resource, "delete", "requires ADMIN role")
	}
	return nil
}

func (s *degreeService) buildDegreeResponse(ctx context.Context, degree *models.Degree, userID string) *DegreeResponse {
	canEdit := false
	if user, err := s.repo.User().GetByID(ctx, userID); err == nil {
		canEdit = user.Role == models.RoleAdmin
	}
	return &DegreeResponse{Degree: degree, CanEdit: canEdit}
}

func (s *degreeService) publishEvent(ctx context.Context, eventType, key, userID string, touched []string) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(eventType, events.DocumentChange{
		Collection: "degrees",
		Key:        key,
		ChangedBy:  userID,
		Touched:    touched,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "key", key, "error", err)
	}
}
