package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrEngineUnavailable indicates the structural-search binary could not be started
	ErrEngineUnavailable = errors.New("structural-search engine unavailable")
)

// Kind classifies the failures surfaced to callers.
type Kind string

const (
	KindConfig        Kind = "config"
	KindEngine        Kind = "engine"
	KindParse         Kind = "parse"
	KindIO            Kind = "io"
	KindMalformedEdit Kind = "malformed_edit"
	KindValidation    Kind = "validation"
)

// Classified is implemented by every error of the taxonomy.
type Classified interface {
	error
	Kind() Kind
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var c Classified
	if errors.As(err, &c) {
		return c.Kind(), true
	}
	return "", false
}

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigError reports a malformed query definition. It is raised before the
// engine is invoked.
type ConfigError struct {
	Reason  string
	Wrapped error
}

func (e *ConfigError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Wrapped)
	}
	return e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Wrapped }

func (e *ConfigError) Kind() Kind { return KindConfig }

// NewConfigError creates a new query configuration error
func NewConfigError(reason string, wrapped error) *ConfigError {
	return &ConfigError{Reason: reason, Wrapped: wrapped}
}

// EngineError carries the engine's own sanitized diagnostic.
type EngineError struct {
	Message  string
	ExitCode int
	Wrapped  error
}

func (e *EngineError) Error() string {
	return e.Message
}

func (e *EngineError) Unwrap() error { return e.Wrapped }

func (e *EngineError) Kind() Kind { return KindEngine }

// NewEngineError creates a new engine error
func NewEngineError(message string, exitCode int, wrapped error) *EngineError {
	return &EngineError{Message: message, ExitCode: exitCode, Wrapped: wrapped}
}

// ParseError reports engine output that did not match the record schema.
type ParseError struct {
	Wrapped error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse engine output: %v", e.Wrapped)
}

func (e *ParseError) Unwrap() error { return e.Wrapped }

func (e *ParseError) Kind() Kind { return KindParse }

// NewParseError creates a new parse error
func NewParseError(wrapped error) *ParseError {
	return &ParseError{Wrapped: wrapped}
}

// IOError reports a file read or write failure for one file of a batch.
type IOError struct {
	Path    string
	Op      string
	Wrapped error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Wrapped)
}

func (e *IOError) Unwrap() error { return e.Wrapped }

func (e *IOError) Kind() Kind { return KindIO }

// NewIOError creates a new I/O error
func NewIOError(path, op string, wrapped error) *IOError {
	return &IOError{Path: path, Op: op, Wrapped: wrapped}
}

// MalformedEditError reports an edit whose range is invalid against the
// buffer it targets. Index is the position of the edit in the caller's list.
type MalformedEditError struct {
	Path      string
	Index     int
	ByteStart uint32
	ByteEnd   uint32
	Reason    string
}

func (e *MalformedEditError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed edit #%d [%d,%d) in %s: %s", e.Index, e.ByteStart, e.ByteEnd, e.Path, e.Reason)
	}
	return fmt.Sprintf("malformed edit #%d [%d,%d): %s", e.Index, e.ByteStart, e.ByteEnd, e.Reason)
}

func (e *MalformedEditError) Kind() Kind { return KindMalformedEdit }

// NewMalformedEditError creates a new malformed edit error
func NewMalformedEditError(index int, start, end uint32, reason string) *MalformedEditError {
	return &MalformedEditError{Index: index, ByteStart: start, ByteEnd: end, Reason: reason}
}
