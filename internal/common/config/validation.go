package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/armadaproject/sweeprun/internal/sweep"
)

// ValidateStruct checks the `validate` struct tags of config and converts every violation into
// a sweep configuration error, so that all problems are reported at once.
func ValidateStruct(config interface{}) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.WithStack(err)
	}
	var result *multierror.Error
	for _, fieldErr := range validationErrors {
		fieldName := stripPrefix(fieldErr.Namespace())
		tag := fieldErr.Tag()
		switch tag {
		case "required":
			result = multierror.Append(result, &sweep.ErrConfiguration{Name: fieldName, Message: "is required but was not found"})
		default:
			result = multierror.Append(result, &sweep.ErrConfiguration{Name: fieldName, Value: fieldErr.Value(), Message: "failed validation: " + tag + "=" + fieldErr.Param()})
		}
	}
	return result.ErrorOrNil()
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
