// Package validation checks inbound request structs and reports the first
// failure as a validation_failed domain error the UI can show.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "webshop/pkg/domain-errors"
	s "webshop/pkg/string"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under the name the UI sends them with.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks req against its `validate` tags.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

var tagMessages = map[string]string{
	"required": "%s is required",
	"notblank": "%s must not be blank",
	"email":    "%s must be a valid email",
	"numeric":  "%s must contain digits only",
	"e164":     "%s must be an international phone number",
}

var paramMessages = map[string]string{
	"len": "%s must be %s characters",
	"min": "%s must be at least %s",
	"max": "%s must be at most %s",
}

// ErrorMessage describes the first failed field of a validator error.
// Fields without a json tag are reported in snake case.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	field := fe.Field()
	if field == "" || field == fe.StructField() {
		field = s.ToSnakeCase(fe.StructField())
	}

	if format, ok := tagMessages[fe.ActualTag()]; ok {
		return fmt.Sprintf(format, field)
	}
	if format, ok := paramMessages[fe.ActualTag()]; ok {
		return fmt.Sprintf(format, field, fe.Param())
	}
	if field == "" {
		return "invalid request body"
	}
	return fmt.Sprintf("%s is invalid", field)
}
