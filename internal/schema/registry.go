// Package schema is the static, role-indexed whitelist of writable profile
// metadata fields, plus the per-field item schema for collection-valued
// fields. The tables are immutable process-wide state; every metadata write
// must be checked against them first.
package schema

import "github.com/SAP-F-2025/advising-service/internal/models"

// Kind is the expected JSON value kind of an item property.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// FieldRule describes one required property of a collection item. When Enum
// is non-empty the value must additionally be a member.
type FieldRule struct {
	Property string
	Kind     Kind
	Enum     []string
}

var allowedFields = map[models.UserRole][]string{
	models.RoleStudent: {
		"degree",
		"bio",
		"languages",
		"skills",
		"academicHistory",
		"certifications",
		"workExperience",
	},
	models.RoleTeacher: {
		"department",
		"bio",
		"languages",
		"skills",
		"certifications",
		"workExperience",
	},
	models.RoleAdmin: {
		"department",
		"bio",
		"systemPermissions",
	},
}

var itemSchemas = map[string][]FieldRule{
	"languages": {
		{Property: "language", Kind: KindString},
		{Property: "level", Kind: KindString, Enum: []string{"low", "medium", "high"}},
	},
	"skills": {
		{Property: "skill", Kind: KindString},
	},
	"academicHistory": {
		{Property: "subject", Kind: KindString},
		{Property: "grade", Kind: KindNumber},
		{Property: "label", Kind: KindString},
		{Property: "credits", Kind: KindNumber},
		{Property: "updatedAt", Kind: KindString},
	},
	"certifications": {
		{Property: "name", Kind: KindString},
		{Property: "date", Kind: KindString},
		{Property: "institution", Kind: KindString},
	},
	"workExperience": {
		{Property: "jobType", Kind: KindString},
		{Property: "startDate", Kind: KindString},
		{Property: "endDate", Kind: KindString},
		{Property: "company", Kind: KindString},
		{Property: "description", Kind: KindString},
		{Property: "responsibilities", Kind: KindString},
	},
}

// AllowedFields returns the writable field names for a role. The returned
// slice is shared; callers must not mutate it.
func AllowedFields(role models.UserRole) []string {
	return allowedFields[role]
}

// IsAllowed reports whether a role may write the given metadata field.
func IsAllowed(role models.UserRole, field string) bool {
	for _, f := range allowedFields[role] {
		if f == field {
			return true
		}
	}
	return false
}

// ItemSchema returns the item schema for a collection-valued field, or nil
// for scalar fields.
func ItemSchema(field string) []FieldRule {
	return itemSchemas[field]
}

// FieldUniverse returns every field name any role may write. Used by tests
// to check the whitelist exhaustively.
func FieldUniverse() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, role := range []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleAdmin} {
		for _, f := range allowedFields[role] {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}
