package workspace

import (
	"fmt"
	"time"
)

// ErrorSeverity represents the severity level of an error.
type ErrorSeverity int

const (
	SeverityLow ErrorSeverity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// ErrorCategory represents the category of an error within the pipeline.
type ErrorCategory int

const (
	CategoryPath ErrorCategory = iota
	CategoryDiffParse
	CategorySemantic
	CategoryDomain
	CategoryRetryExhausted
	CategoryFileSystem
	CategoryConfiguration
)

// StructuredError represents a standardized error with rich context.
type StructuredError struct {
	Code        string
	Message     string
	Severity    ErrorSeverity
	Category    ErrorCategory
	Resource    string
	RootCause   error
	Timestamp   time.Time
	Recoverable bool
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.RootCause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.RootCause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for compatibility with errors.Is and errors.As.
func (e *StructuredError) Unwrap() error {
	return e.RootCause
}

// NewStructuredError creates a new structured error.
func NewStructuredError(code, message string, severity ErrorSeverity, category ErrorCategory, rootCause error) *StructuredError {
	return &StructuredError{
		Code:        code,
		Message:     message,
		Severity:    severity,
		Category:    category,
		RootCause:   rootCause,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewPathViolationError creates the fatal error raised when a candidate
// path fails sanitization. Path violations abort the step and are never
// retried.
func NewPathViolationError(path, reason string) *StructuredError {
	e := NewStructuredError(
		"PATH_VIOLATION",
		fmt.Sprintf("unsafe path rejected: %s", reason),
		SeverityHigh,
		CategoryPath,
		nil,
	)
	e.Resource = path
	e.Recoverable = false
	return e
}

// NewDiffParseError creates the error raised when no confident edits could
// be extracted from model output. It triggers an immediate re-prompt.
func NewDiffParseError(explanation string) *StructuredError {
	return NewStructuredError(
		"DIFF_PARSE_FAILURE",
		explanation,
		SeverityMedium,
		CategoryDiffParse,
		nil,
	)
}

// NewSemanticError creates an error for a blocking semantic finding.
func NewSemanticError(resource, finding string) *StructuredError {
	e := NewStructuredError(
		"SEMANTIC_FINDING",
		finding,
		SeverityMedium,
		CategorySemantic,
		nil,
	)
	e.Resource = resource
	return e
}

// NewDomainViolationError creates an error for a missing required or
// present forbidden pattern for the selected domain.
func NewDomainViolationError(domain, finding string) *StructuredError {
	e := NewStructuredError(
		"DOMAIN_VIOLATION",
		finding,
		SeverityMedium,
		CategoryDomain,
		nil,
	)
	e.Resource = domain
	return e
}

// NewRetryExhaustedError creates the non-fatal error that downgrades a
// step to a manual handoff task.
func NewRetryExhaustedError(stepTitle string, attempts int) *StructuredError {
	e := NewStructuredError(
		"RETRY_EXHAUSTED",
		fmt.Sprintf("step %q failed after %d attempts", stepTitle, attempts),
		SeverityLow,
		CategoryRetryExhausted,
		nil,
	)
	e.Resource = stepTitle
	return e
}

// NewFileSystemError creates a filesystem-related error.
func NewFileSystemError(operation, path string, rootCause error) *StructuredError {
	e := NewStructuredError(
		"FS_ERROR",
		fmt.Sprintf("filesystem error during %s", operation),
		SeverityMedium,
		CategoryFileSystem,
		rootCause,
	)
	e.Resource = path
	return e
}

// NewConfigError creates a configuration-related error.
func NewConfigError(key string, rootCause error) *StructuredError {
	e := NewStructuredError(
		"CFG_ERROR",
		fmt.Sprintf("configuration error for %s", key),
		SeverityMedium,
		CategoryConfiguration,
		rootCause,
	)
	e.Resource = key
	return e
}

// IsCategory reports whether err is a StructuredError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	if structuredErr, ok := err.(*StructuredError); ok {
		return structuredErr.Category == category
	}
	return false
}
