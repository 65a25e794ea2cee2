package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Resource is an external reference attached to a roadmap topic.
type Resource struct {
	Description string `json:"description"`
	Link        string `json:"link"`
}

// TopicDetail describes one topic inside a roadmap section.
type TopicDetail struct {
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Skill       string     `json:"skill"`
	Subject     string     `json:"subject"`
	Resources   []Resource `json:"resources"`
}

// RoadmapBody is a two-level mapping: section name -> topic name -> detail.
// Section-level operations act on the whole topic map bound to a section key.
type RoadmapBody map[string]map[string]TopicDetail

type Roadmap struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:200" validate:"required,max=200"`

	// Body stored as JSONB for flexibility
	Body datatypes.JSONType[RoadmapBody] `json:"body" gorm:"type:jsonb"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Version control for conditional writes
	Version int `json:"version" gorm:"default:1"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}
