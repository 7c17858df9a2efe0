package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "control.tap_threshold_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateApp()...)
	errors = append(errors, c.validateControl()...)
	errors = append(errors, c.validateMessageLog()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateApp() []ValidationError {
	if strings.TrimSpace(c.App.Name) == "" {
		return []ValidationError{{
			Field:   "app.name",
			Value:   c.App.Name,
			Message: "must not be empty",
		}}
	}
	return nil
}

func (c *Config) validateControl() []ValidationError {
	var errors []ValidationError

	// A zero threshold would make every press a drag
	if c.Control.TapThresholdMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "control.tap_threshold_ms",
			Value:   c.Control.TapThresholdMs,
			Message: "must be positive",
		})
	}

	const maxTapThresholdMs = 5000
	if c.Control.TapThresholdMs > maxTapThresholdMs {
		errors = append(errors, ValidationError{
			Field:   "control.tap_threshold_ms",
			Value:   c.Control.TapThresholdMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxTapThresholdMs),
		})
	}

	if c.Control.StartX < 0 {
		errors = append(errors, ValidationError{
			Field:   "control.start_x",
			Value:   c.Control.StartX,
			Message: "must be non-negative",
		})
	}
	if c.Control.StartY < 0 {
		errors = append(errors, ValidationError{
			Field:   "control.start_y",
			Value:   c.Control.StartY,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateMessageLog() []ValidationError {
	if c.MessageLog.RetentionLimit < 1 {
		return []ValidationError{{
			Field:   "messagelog.retention_limit",
			Value:   c.MessageLog.RetentionLimit,
			Message: "must be at least 1",
		}}
	}
	return nil
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
