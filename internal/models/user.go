package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
	RoleAdmin   UserRole = "ADMIN"
)

// User is the live identity resolved from Casdoor per request. Role is never
// persisted locally; it is authoritative only as read fresh from the identity
// store.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"-"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Status
	EmailVerified bool `json:"email_verified" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// Profile holds the role-scoped metadata document for a user. Writes go
// exclusively through the metadata validator and the reconciliation path;
// rows are created at registration, outside this service.
type Profile struct {
	UserID string `json:"user_id" gorm:"primaryKey;size:255"`

	// Whitelisted fields only; the schema registry is the source of truth
	// for which keys a role may write.
	Metadata datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Optimistic concurrency control
	Version int `json:"version" gorm:"default:1"`
}

func (Profile) TableName() string {
	return "profiles"
}
