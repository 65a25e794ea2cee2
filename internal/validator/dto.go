package validator

import (
	"github.com/SAP-F-2025/advising-service/internal/models"
)

// DegreeCreateRequest represents the request structure for creating degrees
type DegreeCreateRequest struct {
	Name     string           `json:"name" validate:"required,document_name"`
	Subjects []SubjectPayload `json:"subjects" validate:"omitempty,dive"`
}

// SubjectPayload is a full subject definition supplied at degree creation
type SubjectPayload struct {
	Name    string             `json:"name" validate:"required,max=200"`
	Mention string             `json:"mention"`
	Credits int                `json:"credits" validate:"required,gt=0"`
	Label   string             `json:"label"`
	Type    models.SubjectType `json:"type" validate:"required,subject_type"`
	Skills  []string           `json:"skills"`
	Year    int                `json:"year" validate:"required,subject_year"`
}

// SubjectsUpdateRequest carries partial updates for existing subjects,
// matched by name
type SubjectsUpdateRequest struct {
	Subjects []SubjectUpdate `json:"subjects" validate:"required,min=1,dive"`
}

// SubjectUpdate is a partial subject patch; nil fields are left untouched
type SubjectUpdate struct {
	Name    string              `json:"name" validate:"required,max=200"`
	Mention *string             `json:"mention"`
	Credits *int                `json:"credits" validate:"omitempty,gt=0"`
	Label   *string             `json:"label"`
	Type    *models.SubjectType `json:"type" validate:"omitempty,subject_type"`
	Skills  []string            `json:"skills"`
	Year    *int                `json:"year" validate:"omitempty,subject_year"`
}

// SubjectsDeleteRequest names the subjects to remove from a degree
type SubjectsDeleteRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,required"`
}

// RoadmapCreateRequest represents the request structure for creating roadmaps
type RoadmapCreateRequest struct {
	Name string             `json:"name" validate:"required,document_name"`
	Body models.RoadmapBody `json:"body"`
}

// SectionPatchRequest carries topic updates for one roadmap section. Topics
// present here replace same-named topics wholesale (one-level merge).
type SectionPatchRequest struct {
	Topics map[string]models.TopicDetail `json:"topics" validate:"required,min=1"`
}

// MetadataDeleteRequest names the profile metadata fields to remove
type MetadataDeleteRequest struct {
	Fields []string `json:"fields" validate:"required,min=1,dive,required"`
}
