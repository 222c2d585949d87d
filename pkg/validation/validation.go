// Package validation checks transport inputs with go-playground/validator
// and reports failures as domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "loot/pkg/domain-errors"
)

// Input size limits applied at the transport boundary.
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	MaxBodySize = 64 * 1024

	// MaxTokenIDDigits fits any uint64 in decimal.
	MaxTokenIDDigits = 20

	// MaxCredentialDigits fits any 256-bit unsigned value in decimal.
	MaxCredentialDigits = 78
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// Report fields by their path parameter or JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"param", "json"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return ""
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain error.
// Path parameters carrying identifiers fail as InvalidIdentifier; everything
// else fails as a bad request.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		code := dErrors.CodeBadRequest
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() == "id" {
			code = dErrors.CodeInvalidIdentifier
		}
		return dErrors.New(code, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request"
	}

	fe := validationErrs[0]
	field := fe.Field()
	if field == "" {
		field = strings.ToLower(fe.StructField())
	}

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "numeric", "number":
		return fmt.Sprintf("%s must be a decimal number", field)
	case "alpha":
		return fmt.Sprintf("%s must contain letters only", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	default:
		if field == "" {
			return "invalid request"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
