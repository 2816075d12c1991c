package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs the struct's validate tags and collects failures into
// a ValidationError keyed by json field path. The returned error is never
// nil so callers can add their own checks before calling OrNil.
func ValidateStruct(entity string, s any) *entities.ValidationError {
	result := entities.NewValidationError(entity)

	err := validate.Struct(s)
	if err == nil {
		return result
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		result.Add("_", err.Error())
		return result
	}

	for _, fe := range fieldErrors {
		result.Add(fieldPath(fe.Namespace()), fe.Tag())
	}
	return result
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
