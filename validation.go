package filecrypt

import (
	"fmt"
	"strings"
)

// Input validation helpers

// ValidateKey checks if a key has the correct size
func ValidateKey(key []byte, expectedSize int) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
		}
	}

	if len(key) != expectedSize {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes", len(key), expectedSize),
		}
	}

	return nil
}

// ValidateFilePath checks if a file path is valid (not empty)
func ValidateFilePath(path string) error {
	if path == "" {
		return &ValidationError{
			Field:   "path",
			Message: "file path cannot be empty",
		}
	}
	return nil
}

// ValidateFileName checks a logical file name handed to FileEncryptor.
// Names are given without the encrypted suffix.
func ValidateFileName(name, suffix string) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if strings.HasSuffix(name, "/") {
		return &ValidationError{
			Field:   "name",
			Value:   name,
			Message: "file name cannot be a directory",
		}
	}
	if suffix != "" && strings.HasSuffix(name, suffix) {
		return &ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("file name must not include the %s suffix", suffix),
		}
	}
	return nil
}

// ValidateSize checks if a size parameter is valid
func ValidateSize(size int, name string, minSize, maxSize int) error {
	if size < 0 {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: "size cannot be negative",
		}
	}
	if minSize >= 0 && size < minSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too small: got %d, minimum is %d", size, minSize),
		}
	}
	if maxSize > 0 && size > maxSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too large: got %d, maximum is %d", size, maxSize),
		}
	}
	return nil
}
