// Package errors provides custom error types for the syncbridge system.
// The types encode the engine's failure taxonomy: a fatal-run error aborts
// the whole invocation, a project error skips one project, an artifact
// error skips one artifact, and warnings are collected but never stop a
// pass. Sentinels enable programmatic checks with errors.Is.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// Common sentinel errors for the syncbridge system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthentication indicates that a tracker rejected the credentials
	ErrAuthentication = errors.New("authentication failed")

	// ErrMappingUnresolved indicates that a required field mapping could
	// not be resolved for an artifact
	ErrMappingUnresolved = errors.New("mapping unresolved")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AuthenticationError represents an authentication failure against one of
// the two trackers. It is fatal for the whole run.
type AuthenticationError struct {
	System  string // "local" or "remote"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error for %s tracker: %s", e.System, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(system, message string, err error) *AuthenticationError {
	return &AuthenticationError{System: system, Message: message, Err: err}
}

// ProjectError marks a failure scoped to a single project. The orchestrator
// logs it, skips the project, and continues the run.
type ProjectError struct {
	ProjectID int
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ProjectError) Error() string {
	return fmt.Sprintf("project %d: %s", e.ProjectID, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ProjectError) Unwrap() error {
	return e.Err
}

// NewProjectError creates a new ProjectError
func NewProjectError(projectID int, message string, err error) *ProjectError {
	return &ProjectError{ProjectID: projectID, Message: message, Err: err}
}

// ArtifactError marks a failure scoped to a single artifact. The orchestrator
// logs it with enough identity to be actionable, skips the artifact, and
// continues the loop. There is no rollback; a partially applied artifact is
// an accepted outcome provided it is logged.
type ArtifactError struct {
	ProjectID  int
	ArtifactID int
	Field      string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *ArtifactError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("project %d artifact %d field %s: %s", e.ProjectID, e.ArtifactID, e.Field, e.Message)
	}
	return fmt.Sprintf("project %d artifact %d: %s", e.ProjectID, e.ArtifactID, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// NewArtifactError creates a new ArtifactError
func NewArtifactError(projectID, artifactID int, field, message string, err error) *ArtifactError {
	return &ArtifactError{
		ProjectID:  projectID,
		ArtifactID: artifactID,
		Field:      field,
		Message:    message,
		Err:        err,
	}
}

// MappingError represents a required field mapping that could not be
// resolved. It is fatal for the surrounding artifact.
type MappingError struct {
	ProjectID int
	Scope     string
	Value     string
	Message   string
}

// Error implements the error interface
func (e *MappingError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("project %d: no %s mapping for %q: %s", e.ProjectID, e.Scope, e.Value, e.Message)
	}
	return fmt.Sprintf("project %d: %s mapping: %s", e.ProjectID, e.Scope, e.Message)
}

// Is implements errors.Is support
func (e *MappingError) Is(target error) bool {
	return target == ErrMappingUnresolved
}

// NewMappingError creates a new MappingError
func NewMappingError(projectID int, scope, value, message string) *MappingError {
	return &MappingError{ProjectID: projectID, Scope: scope, Value: value, Message: message}
}

// ValidationError represents a pre-write validation failure on the target
// artifact. Fields carries the full list of offending field names so the
// failure is diagnosable from the log alone.
type ValidationError struct {
	Field   string
	Fields  []string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed for fields [%s]: %s", strings.Join(e.Fields, ", "), e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// TimeoutError represents an operation timeout, such as the container
// visibility poll exhausting its budget.
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration, Message: message}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsMappingUnresolved checks if an error is an unresolved mapping error
func IsMappingUnresolved(err error) bool {
	return errors.Is(err, ErrMappingUnresolved)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsArtifactError checks if an error is scoped to a single artifact
func IsArtifactError(err error) bool {
	var ae *ArtifactError
	return errors.As(err, &ae)
}

// IsProjectError checks if an error is scoped to a single project
func IsProjectError(err error) bool {
	var pe *ProjectError
	return errors.As(err, &pe)
}

// Helper wrapping functions for common patterns

// WrapArtifact wraps an error as an ArtifactError
func WrapArtifact(projectID, artifactID int, field string, err error) error {
	if err == nil {
		return nil
	}
	return NewArtifactError(projectID, artifactID, field, err.Error(), err)
}

// WrapProject wraps an error as a ProjectError
func WrapProject(projectID int, err error) error {
	if err == nil {
		return nil
	}
	return NewProjectError(projectID, err.Error(), err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
