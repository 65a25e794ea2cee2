package services

import (
	"context"

	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateDegreeRequest = validator.DegreeCreateRequest
type UpdateSubjectsRequest = validator.SubjectsUpdateRequest
type DeleteSubjectsRequest = validator.SubjectsDeleteRequest
type CreateRoadmapRequest = validator.RoadmapCreateRequest
type PatchSectionRequest = validator.SectionPatchRequest
type DeleteMetadataRequest = validator.MetadataDeleteRequest

type DegreeResponse struct {
	*models.Degree
	CanEdit bool `json:"can_edit"`
}

type DegreeListResponse struct {
	Degrees []*DegreeResponse `json:"degrees"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

// SubjectsUpdateResponse reports which subjects the merge touched and
// which requested names had no match in the document.
type SubjectsUpdateResponse struct {
	Degree  *models.Degree `json:"degree"`
	Updated []string       `json:"updated"`
	Skipped []string       `json:"skipped,omitempty"`
}

type SubjectsDeleteResponse struct {
	Degree  *models.Degree `json:"degree"`
	Deleted []string       `json:"deleted"`
}

type RoadmapResponse struct {
	*models.Roadmap
	CanEdit bool `json:"can_edit"`
}

type RoadmapListResponse struct {
	Roadmaps []*RoadmapResponse `json:"roadmaps"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type SectionChangeResponse struct {
	Roadmap *models.Roadmap `json:"roadmap"`
	Section string          `json:"section"`
	Topics  []string        `json:"topics,omitempty"`
}

type MetadataResponse struct {
	UserID   string                 `json:"user_id"`
	Metadata map[string]interface{} `json:"metadata"`
	Version  int                    `json:"version"`
}

type MetadataUpdateResponse struct {
	UserID   string                 `json:"user_id"`
	Metadata map[string]interface{} `json:"metadata"`
	Updated  []string               `json:"updated"`
	Version  int                    `json:"version"`
}

type MetadataDeleteResponse struct {
	UserID   string                 `json:"user_id"`
	Metadata map[string]interface{} `json:"metadata"`
	Deleted  []string               `json:"deleted"`
	Version  int                    `json:"version"`
}

// ===== SERVICE INTERFACES =====

type DegreeService interface {
	Create(ctx context.Context, req *CreateDegreeRequest, creatorID string) (*DegreeResponse, error)
	GetByName(ctx context.Context, name string, userID string) (*DegreeResponse, error)
	List(ctx context.Context, filters repositories.DegreeFilters, userID string) (*DegreeListResponse, error)
	UpdateSubjects(ctx context.Context, name string, req *UpdateSubjectsRequest, userID string) (*SubjectsUpdateResponse, error)
	DeleteSubjects(ctx context.Context, name string, req *DeleteSubjectsRequest, userID string) (*SubjectsDeleteResponse, error)
	Delete(ctx context.Context, name string, userID string) error
}

type RoadmapService interface {
	Create(ctx context.Context, req *CreateRoadmapRequest, creatorID string) (*RoadmapResponse, error)
	GetByName(ctx context.Context, name string, userID string) (*RoadmapResponse, error)
	List(ctx context.Context, filters repositories.RoadmapFilters, userID string) (*RoadmapListResponse, error)
	PatchSection(ctx context.Context, name, section string, req *PatchSectionRequest, userID string) (*SectionChangeResponse, error)
	DeleteSection(ctx context.Context, name, section string, userID string) (*SectionChangeResponse, error)
	Delete(ctx context.Context, name string, userID string) error
}

type ProfileService interface {
	GetMetadata(ctx context.Context, userID string) (*MetadataResponse, error)
	UpdateMetadata(ctx context.Context, userID string, payload map[string]interface{}) (*MetadataUpdateResponse, error)
	DeleteMetadata(ctx context.Context, userID string, req *DeleteMetadataRequest) (*MetadataDeleteResponse, error)
}

type ExportService interface {
	ExportDegreeSubjects(ctx context.Context, name string, userID string) ([]byte, string, error)
}

// ServiceManager wires services to their shared dependencies and owns
// their lifecycle.
type ServiceManager interface {
	Degree() DegreeService
	Roadmap() RoadmapService
	Profile() ProfileService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
