package docrender

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilTemplate is returned when Render is called without a template.
var ErrNilTemplate = errors.New("docrender: template is nil")

// TemplateError represents an error in the template structure or syntax
type TemplateError struct {
	Fragment string
	Offset   int
	Message  string
}

func (e *TemplateError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("template error in %s at offset %d: %s", e.Fragment, e.Offset, e.Message)
	}
	return fmt.Sprintf("template error at offset %d: %s", e.Offset, e.Message)
}

// UnresolvedPlaceholderError is returned under the "error" placeholder policy.
type UnresolvedPlaceholderError struct {
	Name   string
	Offset int
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder {%s} at offset %d", e.Name, e.Offset)
}

// FetchError records a failed logo download. It is logged, never returned by
// Render: the original URL is used instead.
type FetchError struct {
	Key   string
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("logo %s fetch from %s failed: %v", e.Key, e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// RenderError is the fatal error returned by Render.
type RenderError struct {
	TemplateID string
	Fragment   string
	Cause      error
}

func (e *RenderError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("render template %q (%s): %v", e.TemplateID, e.Fragment, e.Cause)
	}
	return fmt.Sprintf("render template %q: %v", e.TemplateID, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string
	Message string
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsTemplateError checks if an error is a template error
func IsTemplateError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te)
}

// IsUnresolvedPlaceholder checks if an error comes from the "error" placeholder policy
func IsUnresolvedPlaceholder(err error) bool {
	var ue *UnresolvedPlaceholderError
	return errors.As(err, &ue)
}
