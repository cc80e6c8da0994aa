// Package errors provides the error vocabulary shared by hicolink packages:
// sentinel errors, domain error types carrying widget graph context, and
// classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - LinkError: sort-order and value-scale sharing between widgets
//   - RegistryError: collection and widget bookkeeping
//   - DataError: loading and decoding pileup matrices
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - AlreadyExistsError: resource already exists
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewLinkError("cannot accept selection", errors.ErrPaletteExhausted).
//	    WithCollection("c1").WithWidget("w3").WithChannel("sortorder")
//
//	if errors.Is(err, errors.ErrPaletteExhausted) { ... }
//
//	var linkErr *errors.LinkError
//	if errors.As(err, &linkErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Registry sentinel errors
var (
	ErrWidgetNotFound     = New("widget not found")
	ErrCollectionNotFound = New("collection not found")
	ErrWidgetExists       = New("widget already exists")
)

// Linking sentinel errors
var (
	// ErrPaletteExhausted indicates that every indicator color is in use.
	ErrPaletteExhausted = New("no free indicator color")
	// ErrNotSelecting indicates a selection operation on a widget that is
	// not choosing a donor.
	ErrNotSelecting = New("widget is not selecting a donor")
	// ErrNotSharing indicates a stop request on a widget that does not
	// display a donor's value.
	ErrNotSharing = New("widget is not receiving a shared value")
	// ErrLinkClosed indicates an operation on an unmounted widget.
	ErrLinkClosed = New("link is closed")
	// ErrIncompatibleTarget indicates a donor whose widget type or colormap
	// does not match the recipient.
	ErrIncompatibleTarget = New("incompatible sharing target")
)

// Data sentinel errors
var (
	ErrMalformedPileup = New("malformed pileup")
	ErrNoData          = New("no data")
	ErrInvalidInput    = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// HicolinkError is implemented by every error type in this package.
type HicolinkError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	// IsUserFacing reports whether the message is fit for the status line.
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }

func (e *baseError) IsUserFacing() bool { return e.userFacing }

// format renders "kind [k=v, ...]: message: cause".
func (e *baseError) format(kind string, context ...string) string {
	var parts []string
	for i := 0; i+1 < len(context); i += 2 {
		if context[i+1] != "" {
			parts = append(parts, context[i]+"="+context[i+1])
		}
	}

	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// LinkError reports a failure in the sharing protocol between two widgets.
//
// Example:
//
//	err := errors.NewLinkError("cannot accept selection", errors.ErrPaletteExhausted).
//	    WithCollection("c1").WithWidget("w3").WithChannel("sortorder")
//	fmt.Println(err) // "link error [collection=c1, widget=w3, channel=sortorder]: cannot accept selection: no free indicator color"
type LinkError struct {
	baseError
	CollectionID string
	WidgetID     string
	Channel      string
}

// NewLinkError creates a new LinkError.
func NewLinkError(message string, cause error) *LinkError {
	return &LinkError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithCollection adds a collection ID to the error context.
func (e *LinkError) WithCollection(id string) *LinkError {
	e.CollectionID = id
	return e
}

// WithWidget adds a widget ID to the error context.
func (e *LinkError) WithWidget(id string) *LinkError {
	e.WidgetID = id
	return e
}

// WithChannel adds the sharing channel to the error context.
func (e *LinkError) WithChannel(channel string) *LinkError {
	e.Channel = channel
	return e
}

// WithSeverity sets the error severity.
func (e *LinkError) WithSeverity(s Severity) *LinkError {
	e.severity = s
	return e
}

func (e *LinkError) Error() string {
	return e.format("link error",
		"collection", e.CollectionID,
		"widget", e.WidgetID,
		"channel", e.Channel)
}

// Is checks if this error matches the target.
func (e *LinkError) Is(target error) bool {
	if _, ok := target.(*LinkError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// RegistryError reports a failed collection or widget operation.
type RegistryError struct {
	baseError
	CollectionID string
	WidgetID     string
}

// NewRegistryError creates a new RegistryError.
func NewRegistryError(message string, cause error) *RegistryError {
	return &RegistryError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithCollection adds a collection ID to the error context.
func (e *RegistryError) WithCollection(id string) *RegistryError {
	e.CollectionID = id
	return e
}

// WithWidget adds a widget ID to the error context.
func (e *RegistryError) WithWidget(id string) *RegistryError {
	e.WidgetID = id
	return e
}

func (e *RegistryError) Error() string {
	return e.format("registry error",
		"collection", e.CollectionID,
		"widget", e.WidgetID)
}

// Is checks if this error matches the target.
func (e *RegistryError) Is(target error) bool {
	if _, ok := target.(*RegistryError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DataError reports a pileup that could not be read or decoded.
//
// Example:
//
//	err := errors.NewDataError("decode failed", errors.ErrMalformedPileup).
//	    WithPath("data/ctcf.json").WithDataset("ctcf")
type DataError struct {
	baseError
	Path    string
	Dataset string
}

// NewDataError creates a new DataError.
func NewDataError(message string, cause error) *DataError {
	return &DataError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithPath adds the source file path to the error context.
func (e *DataError) WithPath(path string) *DataError {
	e.Path = path
	return e
}

// WithDataset adds the dataset name to the error context.
func (e *DataError) WithDataset(name string) *DataError {
	e.Dataset = name
	return e
}

func (e *DataError) Error() string {
	return e.format("data error",
		"dataset", e.Dataset,
		"path", e.Path)
}

// Is checks if this error matches the target.
func (e *DataError) Is(target error) bool {
	if _, ok := target.(*DataError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("widget", "w3")
//	fmt.Println(err) // "widget 'w3' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Is matches other NotFoundErrors and the registry's not-found sentinels.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	switch {
	case target == ErrWidgetNotFound && e.ResourceType == "widget":
		return true
	case target == ErrCollectionNotFound && e.ResourceType == "collection":
		return true
	}
	return e.baseError.Is(target)
}

// AlreadyExistsError represents a resource that already exists.
type AlreadyExistsError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Is checks if this error matches the target.
func (e *AlreadyExistsError) Is(target error) bool {
	if _, ok := target.(*AlreadyExistsError); ok {
		return true
	}
	if target == ErrWidgetExists && e.ResourceType == "widget" {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("bin size must be positive").WithField("size").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	value := ""
	if e.Value != nil {
		value = fmt.Sprintf("%v", e.Value)
	}
	return e.format("validation error", "field", e.Field, "value", value)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var hErr HicolinkError
	if As(err, &hErr) {
		return hErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement HicolinkError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var hErr HicolinkError
	if As(err, &hErr) {
		return hErr.Severity()
	}
	return SeverityError
}

// IsSemanticError returns true for NotFoundError, AlreadyExistsError and
// ValidationError.
func IsSemanticError(err error) bool {
	if err == nil {
		return false
	}
	var notFound *NotFoundError
	var alreadyExists *AlreadyExistsError
	var validation *ValidationError
	return As(err, &notFound) || As(err, &alreadyExists) || As(err, &validation)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message. It returns nil for a
// nil err.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
