// src/security/validation/field_validator.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

// ErrValidationFailed marks every error produced by this package.
var ErrValidationFailed = errors.New("validation failed")

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	registerNoBlank()
}

// FieldError describes one failing field.
type FieldError struct {
	Field string
	Tag   string
}

func (e FieldError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "noBlank":
		return fmt.Sprintf("%s must not be blank", e.Field)
	default:
		return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
	}
}

// ValidateStruct runs the struct's validate tags and returns every failure at once.
// The result wraps ErrValidationFailed.
func ValidateStruct(toValidate any) error {
	err := validate.Struct(toValidate)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	var errs *multierror.Error
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		for _, valErr := range valErrs {
			errs = multierror.Append(errs, FieldError{Field: valErr.Namespace(), Tag: valErr.Tag()})
		}
	}
	if errs == nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	errs.ErrorFormat = func(es []error) string {
		parts := make([]string, len(es))
		for i, e := range es {
			parts[i] = e.Error()
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, errs.ErrorOrNil())
}

func registerNoBlank() {
	_ = validate.RegisterValidation("noBlank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
