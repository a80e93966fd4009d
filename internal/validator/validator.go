package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/calasanz-edu/report-service/internal/models"
)

// Validator wraps go-playground/validator with the domain enum rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()

	return v
}

func (v *Validator) registerDomainRules() {
	_ = v.validate.RegisterValidation("edu_purpose", func(fl validator.FieldLevel) bool {
		value := models.EduPurpose(fl.Field().String())
		for _, p := range models.EduPurposes() {
			if value == p {
				return true
			}
		}
		return false
	})

	_ = v.validate.RegisterValidation("section_band", func(fl validator.FieldLevel) bool {
		value := models.SectionBand(fl.Field().String())
		for _, b := range models.SectionBands() {
			if value == b {
				return true
			}
		}
		return false
	})

	_ = v.validate.RegisterValidation("staff_role", func(fl validator.FieldLevel) bool {
		value := models.Role(fl.Field().String())
		return value == models.RoleDocente || value == models.RoleCoordinador || value == models.RoleAdminGlobal
	})

	_ = v.validate.RegisterValidation("report_status", func(fl validator.FieldLevel) bool {
		value := models.ReportStatus(fl.Field().String())
		for _, s := range models.ReportStatuses() {
			if value == s {
				return true
			}
		}
		return false
	})
}

// Struct validates a request struct and converts failures into
// ValidationErrors suitable for a 400 response body.
func (v *Validator) Struct(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errs = append(errs, ValidationError{
			Field:   fieldErr.Field(),
			Message: messageFor(fieldErr),
			Rule:    fieldErr.Tag(),
		})
	}
	return errs
}

func messageFor(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "edu_purpose":
		return "must be a valid educational purpose"
	case "section_band":
		return "must be a valid section band"
	case "staff_role":
		return "must be a valid staff role"
	case "report_status":
		return "must be a valid report status"
	default:
		return fmt.Sprintf("failed validation rule %q", err.Tag())
	}
}

// ValidationError is one field failure in a request payload or import row.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
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
