package validator

import (
	"fmt"

	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/schema"
)

// RuleFieldNotAllowed marks a metadata key outside the submitting role's
// whitelist. Handlers map it to 403 instead of 400.
const RuleFieldNotAllowed = "field_not_allowed"

// ValidatedPayload is a metadata payload that passed the whitelist and item
// schema checks. It carries the role it was validated against so a payload
// cannot be reused under a different role.
type ValidatedPayload struct {
	Role   models.UserRole
	Fields map[string]any
}

// ValidateMetadata checks every top-level key of a metadata payload against
// the schema registry for the given role. Validation is all-or-nothing: the
// first disallowed or malformed field rejects the entire payload.
func (v *Validator) ValidateMetadata(role models.UserRole, payload map[string]any) (*ValidatedPayload, error) {
	for field, value := range payload {
		if !schema.IsAllowed(role, field) {
			return nil, ValidationErrors{{
				Field:   field,
				Message: fmt.Sprintf("not writable by role %s", role),
				Rule:    RuleFieldNotAllowed,
			}}
		}

		rules := schema.ItemSchema(field)
		if rules == nil {
			continue
		}

		items, ok := value.([]any)
		if !ok {
			return nil, ValidationErrors{{
				Field:   field,
				Message: "must be a list",
				Value:   value,
				Rule:    "item_schema",
			}}
		}

		for i, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				return nil, ValidationErrors{{
					Field:   field,
					Message: fmt.Sprintf("item %d must be an object", i),
					Value:   raw,
					Rule:    "item_schema",
				}}
			}
			if err := checkItem(field, i, item, rules); err != nil {
				return nil, err
			}
		}
	}

	return &ValidatedPayload{Role: role, Fields: payload}, nil
}

func checkItem(field string, index int, item map[string]any, rules []schema.FieldRule) error {
	for _, rule := range rules {
		value, present := item[rule.Property]
		if !present {
			return ValidationErrors{{
				Field:   field,
				Message: fmt.Sprintf("item %d is missing property %q", index, rule.Property),
				Rule:    "item_schema",
			}}
		}

		if !kindMatches(rule.Kind, value) {
			return ValidationErrors{{
				Field:   field,
				Message: fmt.Sprintf("item %d property %q must be a %s", index, rule.Property, rule.Kind),
				Value:   value,
				Rule:    "item_schema",
			}}
		}

		if len(rule.Enum) > 0 && !enumContains(rule.Enum, value) {
			return ValidationErrors{{
				Field:   field,
				Message: fmt.Sprintf("item %d property %q must be one of %v", index, rule.Property, rule.Enum),
				Value:   value,
				Rule:    "item_schema",
			}}
		}
	}
	return nil
}

func kindMatches(kind schema.Kind, value any) bool {
	switch kind {
	case schema.KindString:
		_, ok := value.(string)
		return ok
	case schema.KindNumber:
		// JSON numbers decode as float64; accept ints from typed callers too.
		switch value.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case schema.KindBoolean:
		_, ok := value.(bool)
		return ok
	}
	return false
}

func enumContains(enum []string, value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, e := range enum {
		if e == s {
			return true
		}
	}
	return false
}
