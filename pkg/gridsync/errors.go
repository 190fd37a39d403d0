package gridsync

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound indicates the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig indicates the config file or a field in it is malformed.
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError represents an error while loading configuration.
type ConfigError struct {
	Path  string
	Field string // empty when the whole file is at fault
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("config %q (%s): %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config (%s): %v", e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("config %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(path, field string, err error) *ConfigError {
	return &ConfigError{
		Path:  path,
		Field: field,
		Err:   err,
	}
}
