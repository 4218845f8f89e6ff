package filecrypt

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ResourceNotFoundError reports a missing input: a plaintext file, an
// encrypted file or a salt resource read on a path that requires it.
type ResourceNotFoundError struct {
	Path string // The path that was attempted
	Err  error  // Underlying error from the file manager, if any
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Path)
}

func (e *ResourceNotFoundError) Unwrap() error {
	return e.Err
}

// Is reports ErrNotFound so callers can match without errors.As
func (e *ResourceNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IOError represents any other file manager failure (permissions, disk
// full, a failed delete after a successful encryption, ...).
type IOError struct {
	Operation string // "read", "write", "append", "delete", "move", ...
	Path      string // File path
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AuthenticationError is returned when a payload fails to authenticate.
// A wrong key and a tampered payload produce the same error.
type AuthenticationError struct {
	Path    string // File path, if known
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *AuthenticationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("authentication error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAuthFailed         = errors.New("key does not match or the file has been tampered with")
	ErrNilConfig          = errors.New("config cannot be nil")
	ErrNilFileManager     = errors.New("file manager cannot be nil")
	ErrNilEngine          = errors.New("cipher engine cannot be nil")
	ErrNilKeyProvider     = errors.New("key provider cannot be nil")
	ErrUnsupportedCipher  = errors.New("unsupported cipher suite")
	ErrInvalidHeader      = errors.New("invalid payload header")
	ErrUnsupportedVersion = errors.New("unsupported payload format version")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewNotFoundError creates a new resource-not-found error
func NewNotFoundError(path string, err error) error {
	return &ResourceNotFoundError{
		Path: path,
		Err:  err,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewAuthenticationError creates a new authentication error. The message
// never depends on err so wrong keys and tampering stay indistinguishable.
func NewAuthenticationError(path string) error {
	return &AuthenticationError{
		Path:    path,
		Message: ErrAuthFailed.Error(),
		Err:     ErrAuthFailed,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound checks if an error is a resource-not-found error
func IsNotFound(err error) bool {
	var nf *ResourceNotFoundError
	return errors.As(err, &nf)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}
