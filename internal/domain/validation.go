package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the struct tags of v. Field names in the returned error use
// the JSON names, prefixed with prefix when it is not empty.
func Validate(v any, prefix string) *ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError(strings.TrimSuffix(prefix, "."), err.Error())
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[prefix+fe.Field()] = fe.Tag()
	}
	return out
}

// Merge folds other into e and returns e, allocating when e is nil.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	if e == nil {
		e = &ValidationError{Fields: make(map[string]string, len(other.Fields))}
	}
	for k, v := range other.Fields {
		e.Fields[k] = v
	}
	return e
}
