package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

// Validate checks the `validate` struct tags of config. Each violation is logged and the first one is
// returned as an ErrInput.
func Validate(config interface{}) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.WithStack(err)
	}
	logValidationErrors(validationErrors)
	first := validationErrors[0]
	return &tracetoolerrors.ErrInput{
		Name:    stripPrefix(first.Namespace()),
		Value:   first.Value(),
		Message: "failed validation: " + first.Tag(),
	}
}

func logValidationErrors(err validator.ValidationErrors) {
	for _, err := range err {
		fieldName := stripPrefix(err.Namespace())
		tag := err.Tag()
		switch tag {
		case "required":
			log.Errorf("ConfigError: Field %s is required but was not found", fieldName)
		default:
			log.Errorf("ConfigError: Field %s has invalid value %v: %s", fieldName, err.Value(), tag)
		}
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
