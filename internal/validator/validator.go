package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/advising-service/internal/models"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground struct validation plus the domain rules for
// degrees, roadmaps and role-scoped metadata payloads.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates any struct against its validate tags. Returns nil when
// the struct is valid.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	for _, fe := range err.(validator.ValidationErrors) {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

func (v *Validator) registerRules() {
	// Subject type validation (B, OB, OP, OBM)
	v.validate.RegisterValidation("subject_type", func(fl validator.FieldLevel) bool {
		t := models.SubjectType(fl.Field().String())
		switch t {
		case models.SubjectBasic, models.SubjectObligatory, models.SubjectOptional, models.SubjectObligatoryMention:
			return true
		}
		return false
	})

	// Academic year validation (1-6)
	v.validate.RegisterValidation("subject_year", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 1 && year <= 6
	})

	// Document name validation (non-blank, 1-200 characters)
	v.validate.RegisterValidation("document_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 1 && len(name) <= 200
	})
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "subject_type":
		return "must be one of B, OB, OP, OBM"
	case "subject_year":
		return "must be between 1 and 6"
	case "document_name":
		return "must be a non-blank name of at most 200 characters"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
