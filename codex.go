// Package codex holds the configuration model and error kinds shared by the
// zsh-codex completion helper. The configuration is an INI file with a reserved
// [service] section whose `service` key names the active vendor section.
package codex

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfigNotFound is wrapped by ConfigurationError when the file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// ConfigurationError reports a missing or invalid configuration file, section or key.
type ConfigurationError struct {
	// Path is the configuration file that was read.
	Path string
	// Section is the section being inspected, if any.
	Section string
	// Key is the option that is missing or invalid, if any.
	Key string
	// Err is the underlying cause.
	Err error
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration error")
	if e.Path != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Path)
	}
	switch {
	case e.Section != "" && e.Key != "":
		fmt.Fprintf(&sb, " [%s] %s", e.Section, e.Key)
	case e.Section != "":
		fmt.Fprintf(&sb, " [%s]", e.Section)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UnsupportedServiceError is returned when api_type names no known adapter.
type UnsupportedServiceError struct {
	APIType   string
	Supported []string
}

func (e *UnsupportedServiceError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported api_type %q", e.APIType)
	}
	return fmt.Sprintf("unsupported api_type %q (supported: %s)", e.APIType, strings.Join(e.Supported, ", "))
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsUnsupportedService reports whether err is or wraps an UnsupportedServiceError.
func IsUnsupportedService(err error) bool {
	var ue *UnsupportedServiceError
	return errors.As(err, &ue)
}
