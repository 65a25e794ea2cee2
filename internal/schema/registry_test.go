package schema

import (
	"reflect"
	"sort"
	"testing"

	"github.com/SAP-F-2025/advising-service/internal/models"
)

func TestAllowedFields(t *testing.T) {
	tests := []struct {
		role models.UserRole
		want []string
	}{
		{models.RoleStudent, []string{"academicHistory", "bio", "certifications", "degree", "languages", "skills", "workExperience"}},
		{models.RoleTeacher, []string{"bio", "certifications", "department", "languages", "skills", "workExperience"}},
		{models.RoleAdmin, []string{"bio", "department", "systemPermissions"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := append([]string(nil), AllowedFields(tt.role)...)
			sort.Strings(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AllowedFields(%s) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestIsAllowed(t *testing.T) {
	tests := []struct {
		name  string
		role  models.UserRole
		field string
		want  bool
	}{
		{"student can write degree", models.RoleStudent, "degree", true},
		{"student cannot write department", models.RoleStudent, "department", false},
		{"student cannot write systemPermissions", models.RoleStudent, "systemPermissions", false},
		{"teacher can write department", models.RoleTeacher, "department", true},
		{"teacher cannot write degree", models.RoleTeacher, "degree", false},
		{"teacher cannot write academicHistory", models.RoleTeacher, "academicHistory", false},
		{"admin can write systemPermissions", models.RoleAdmin, "systemPermissions", true},
		{"admin cannot write skills", models.RoleAdmin, "skills", false},
		{"unknown role allows nothing", models.UserRole("GUEST"), "bio", false},
		{"unknown field is rejected", models.RoleStudent, "favoriteColor", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAllowed(tt.role, tt.field); got != tt.want {
				t.Errorf("IsAllowed(%s, %s) = %v, want %v", tt.role, tt.field, got, tt.want)
			}
		})
	}
}

// Every role x field pair must resolve the same way through AllowedFields
// and IsAllowed. Catches a field added to one table but not the other.
func TestWhitelistConsistency(t *testing.T) {
	roles := []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleAdmin}

	for _, role := range roles {
		allowed := make(map[string]bool)
		for _, f := range AllowedFields(role) {
			allowed[f] = true
		}
		for _, field := range FieldUniverse() {
			if IsAllowed(role, field) != allowed[field] {
				t.Errorf("role %s field %s: IsAllowed and AllowedFields disagree", role, field)
			}
		}
	}
}

func TestItemSchema(t *testing.T) {
	t.Run("scalar fields have no item schema", func(t *testing.T) {
		for _, field := range []string{"degree", "bio", "department", "systemPermissions"} {
			if ItemSchema(field) != nil {
				t.Errorf("ItemSchema(%s) = non-nil, want nil", field)
			}
		}
	})

	t.Run("collection fields carry required properties", func(t *testing.T) {
		tests := []struct {
			field string
			props []string
		}{
			{"languages", []string{"language", "level"}},
			{"skills", []string{"skill"}},
			{"academicHistory", []string{"subject", "grade", "label", "credits", "updatedAt"}},
			{"certifications", []string{"name", "date", "institution"}},
			{"workExperience", []string{"jobType", "startDate", "endDate", "company", "description", "responsibilities"}},
		}

		for _, tt := range tests {
			rules := ItemSchema(tt.field)
			if rules == nil {
				t.Errorf("ItemSchema(%s) = nil, want rules", tt.field)
				continue
			}
			var got []string
			for _, r := range rules {
				got = append(got, r.Property)
			}
			if !reflect.DeepEqual(got, tt.props) {
				t.Errorf("ItemSchema(%s) properties = %v, want %v", tt.field, got, tt.props)
			}
		}
	})

	t.Run("language level is enum constrained", func(t *testing.T) {
		for _, rule := range ItemSchema("languages") {
			if rule.Property == "level" {
				want := []string{"low", "medium", "high"}
				if !reflect.DeepEqual(rule.Enum, want) {
					t.Errorf("level enum = %v, want %v", rule.Enum, want)
				}
				return
			}
		}
		t.Fatal("languages schema has no level rule")
	})
}
