// Package errors provides centralized error handling with optional telemetry integration
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sync/atomic"
	"time"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	CategoryTimezoneScan  ErrorCategory = "timezone-scan"
	CategoryTriggerLedger ErrorCategory = "trigger-ledger"
	CategoryVoicePlayback ErrorCategory = "voice-playback"
	CategoryAudioFile     ErrorCategory = "audio-file"
	CategoryDatabase      ErrorCategory = "database"
	CategoryMQTTPublish   ErrorCategory = "mqtt-publish"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryValidation    ErrorCategory = "validation"
	CategorySecurity      ErrorCategory = "security"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryGeneric       ErrorCategory = "generic"
)

// Sentinel errors forming the playback failure taxonomy. Callers match these
// with errors.Is after the coordinator has normalized platform failures.
var (
	// ErrNoAudioConfigured means no clip exists for the guild in any category.
	ErrNoAudioConfigured = stderrors.New("no cheer audio configured")
	// ErrPathBlocked means a clip path resolved outside the audio root.
	ErrPathBlocked = stderrors.New("audio path outside allowed root")
	// ErrFileMissing means the local file is gone and no backup payload exists.
	ErrFileMissing = stderrors.New("audio file missing and no backup available")
	// ErrConnectionTimeout means the voice connection or playback state wait
	// exceeded its bound.
	ErrConnectionTimeout = stderrors.New("voice connection or playback timed out")
	// ErrEncryptionNegotiation means the voice transport could not agree on an
	// encryption mode. Retrying does not help.
	ErrEncryptionNegotiation = stderrors.New("voice encryption negotiation failed")
	// ErrTranscoderUnavailable means the audio transcoder binary is not
	// installed or not on PATH. Retrying does not help.
	ErrTranscoderUnavailable = stderrors.New("audio transcoder unavailable")
)

// ComponentUnknown is used when the component was not set by the builder.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with component, category and context metadata
type EnhancedError struct {
	Err       error          // Original error
	Component string         // Component where the error occurred
	Category  ErrorCategory  // Error category for grouping
	Context   map[string]any // Additional context data
	Timestamp time.Time      // When the error occurred
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is reports category equality for EnhancedError targets and otherwise
// defers to the wrapped chain, so errors.Is(err, ErrFileMissing) works
// through the builder wrapper.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetContext returns a copy of the error context
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	cp := make(map[string]any, len(ee.Context))
	maps.Copy(cp, ee.Context)
	return cp
}

// ErrorBuilder provides a fluent interface for creating enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping err
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new builder around a formatted error
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component name
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category for better grouping
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds a context key/value pair to the error
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build creates the EnhancedError and triggers optional telemetry reporting
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
	if ee.Component == "" {
		ee.Component = ComponentUnknown
	}
	if ee.Category == "" {
		ee.Category = CategoryGeneric
	}
	if hasActiveReporting.Load() {
		reportToTelemetry(ee)
	}
	return ee
}

// Reporter receives built errors for out-of-process reporting.
type Reporter interface {
	ReportError(ee *EnhancedError)
}

var (
	hasActiveReporting atomic.Bool
	activeReporter     atomic.Pointer[Reporter]
)

// SetReporter installs a telemetry reporter. Passing nil disables reporting.
func SetReporter(r Reporter) {
	if r == nil {
		activeReporter.Store(nil)
		hasActiveReporting.Store(false)
		return
	}
	activeReporter.Store(&r)
	hasActiveReporting.Store(true)
}

func reportToTelemetry(ee *EnhancedError) {
	if p := activeReporter.Load(); p != nil {
		(*p).ReportError(ee)
	}
}

// Convenience re-exports so callers do not need both this package and stdlib errors.

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
