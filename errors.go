// FILE: lixenwraith/goodconf/errors.go
package goodconf

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned (usually wrapped) by loading and registration.
var (
	// ErrConfigNotFound indicates that a configuration file could not be found.
	// LoadWithOptions still loads the other sources; Build and Quick fail on it
	// because the file was named explicitly.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrUnknownField indicates an override for a path that was never registered.
	ErrUnknownField = errors.New("unknown configuration field")

	// ErrRequired indicates a required field that no source supplied.
	ErrRequired = errors.New("field required")

	// ErrValueSize indicates an environment value larger than MaxValueSize.
	ErrValueSize = errors.New("value exceeds maximum size")

	// ErrFileTooLarge indicates a configuration file larger than the configured limit.
	ErrFileTooLarge = errors.New("configuration file exceeds maximum size")

	// ErrInvalidPath indicates a malformed dot-separated path.
	ErrInvalidPath = errors.New("invalid configuration path")

	// ErrInvalidField indicates inconsistent field metadata.
	ErrInvalidField = errors.New("invalid field declaration")

	// ErrConstraint indicates a value rejected by a `validate:"..."` rule.
	ErrConstraint = errors.New("constraint violated")
)

// MaxValueSize limits the size of a single environment value.
const MaxValueSize = 1 << 20

// FieldError describes a single failed field.
type FieldError struct {
	Path string
	Err  error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError collects every field that failed resolution, coercion or
// validation in a single pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation error(s) for configuration", len(e.Fields))
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes the field errors to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}

// Missing returns the paths that failed with ErrRequired.
func (e *ValidationError) Missing() []string {
	var paths []string
	for _, f := range e.Fields {
		if errors.Is(f.Err, ErrRequired) {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

func (e *ValidationError) add(path string, err error) {
	e.Fields = append(e.Fields, FieldError{Path: path, Err: err})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
