package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubjectType string

const (
	SubjectBasic             SubjectType = "B"
	SubjectObligatory        SubjectType = "OB"
	SubjectOptional          SubjectType = "OP"
	SubjectObligatoryMention SubjectType = "OBM"
)

// Subject is one named entry of a degree curriculum. Names are unique within
// a degree; the list is stored as a jsonb document alongside the degree row.
type Subject struct {
	Name      string      `json:"name" validate:"required,max=200"`
	Mention   string      `json:"mention"`
	Credits   int         `json:"credits" validate:"required,gt=0"`
	Label     string      `json:"label"`
	Type      SubjectType `json:"type" validate:"required,subject_type"`
	Skills    []string    `json:"skills"`
	Year      int         `json:"year" validate:"required,subject_year"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Degree struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:200" validate:"required,max=200"`

	// Curriculum stored as JSONB for flexibility
	Subjects datatypes.JSONSlice[Subject] `json:"subjects" gorm:"type:jsonb"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Version control for conditional writes
	Version int `json:"version" gorm:"default:1"`
}

func (Degree) TableName() string {
	return "degrees"
}

// SubjectByName indexes the curriculum by subject name.
func (d *Degree) SubjectByName(name string) (Subject, bool) {
	for _, s := range d.Subjects {
		if s.Name == name {
			return s, true
		}
	}
	return Subject{}, false
}
