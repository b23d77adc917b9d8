package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for compiler operations.
const (
	ErrCodeProviderURLInvalid  = "PROVIDER_URL_INVALID"
	ErrCodeCustomHeaderInvalid = "CUSTOM_HEADER_INVALID"
	ErrCodeSourceUnresolved    = "SOURCE_UNRESOLVED"
	ErrCodeSelectorInvalid     = "SELECTOR_INVALID"
	ErrCodeEngineCallFailed    = "ENGINE_CALL_FAILED"
	ErrCodeOrderMissing        = "ORDER_MISSING"
	ErrCodeOrderConflict       = "ORDER_CONFLICT"
	ErrCodeCompileAborted      = "COMPILE_ABORTED"
)

// DescriptorError represents a user-friendly compiler error with actionable suggestions.
type DescriptorError struct {
	Code       string       // Error code for categorization
	Message    string       // User-friendly error message
	Descriptor FunctionName // Descriptor that reported the error
	Item       string       // Offending entry, such as a header or pact source
	Suggestion string       // Actionable suggestion to fix the error
	Underlying error        // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *DescriptorError) Error() string {
	if e.Descriptor != "" {
		return fmt.Sprintf("%s: %s", e.Descriptor, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *DescriptorError) Unwrap() error {
	return e.Underlying
}

// Is matches another DescriptorError by code.
func (e *DescriptorError) Is(target error) bool {
	var t *DescriptorError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *DescriptorError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Descriptor != "" {
		fmt.Fprintf(&b, "\n  Descriptor: %s", e.Descriptor)
	}
	if e.Item != "" {
		fmt.Fprintf(&b, "\n  Item: %s", e.Item)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}

	return b.String()
}

// NewDescriptorError creates a new DescriptorError with the given code and message.
func NewDescriptorError(code, message string) *DescriptorError {
	return &DescriptorError{
		Code:    code,
		Message: message,
	}
}

// WithDescriptor returns a copy with the descriptor set.
func (e *DescriptorError) WithDescriptor(name FunctionName) *DescriptorError {
	c := *e
	c.Descriptor = name
	return &c
}

// WithItem returns a copy with the offending item set.
func (e *DescriptorError) WithItem(item string) *DescriptorError {
	c := *e
	c.Item = item
	return &c
}

// WithSuggestion returns a copy with the suggestion set.
func (e *DescriptorError) WithSuggestion(suggestion string) *DescriptorError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a copy wrapping err.
func (e *DescriptorError) WithUnderlying(err error) *DescriptorError {
	c := *e
	c.Underlying = err
	return &c
}

// Common compiler error constructors.

// NewProviderURLInvalidError creates the error that aborts a compile pass.
func NewProviderURLInvalidError(rawURL string, err error) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeProviderURLInvalid,
		Message:    fmt.Sprintf("provider base URL %q cannot be parsed", rawURL),
		Descriptor: ProviderInfo,
		Item:       rawURL,
		Suggestion: "Use an absolute URL such as http://localhost:8080/.",
		Underlying: err,
	}
}

// NewCustomHeaderInvalidError creates an error for a malformed header entry.
func NewCustomHeaderInvalidError(entry string) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeCustomHeaderInvalid,
		Message:    fmt.Sprintf("custom header %q must be in the form Name: Value", entry),
		Descriptor: CustomHeader,
		Item:       entry,
		Suggestion: "Headers are split on ':' and must contain exactly one colon.",
	}
}

// NewSourceMissingError creates an error for a pact source that cannot be inspected.
func NewSourceMissingError(location string, err error) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeSourceUnresolved,
		Message:    fmt.Sprintf("Pact file or directory '%s' doesn't exist", location),
		Descriptor: DirectorySource,
		Item:       location,
		Suggestion: "Check the path relative to the working directory, or use an http(s) URL.",
		Underlying: err,
	}
}

// NewSourceUnsupportedError creates an error for a pact source that exists
// but is neither a file nor a directory.
func NewSourceUnsupportedError(location, kind string) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeSourceUnresolved,
		Message:    fmt.Sprintf("Pact source '%s' is not a file or directory (found %s)", location, kind),
		Descriptor: DirectorySource,
		Item:       location,
	}
}

// NewSelectorInvalidError creates an error for a selector that cannot be serialized.
func NewSelectorInvalidError(index int, err error) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeSelectorInvalid,
		Message:    fmt.Sprintf("consumer version selector %d cannot be serialized", index),
		Descriptor: BrokerSourceWithSelectors,
		Underlying: err,
	}
}

// NewEngineCallError creates an error for a native call that failed at the
// transport level.
func NewEngineCallError(name FunctionName, call string, err error) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeEngineCallFailed,
		Message:    fmt.Sprintf("%s: %v", call, err),
		Descriptor: name,
		Underlying: err,
	}
}

// NewOrderMissingError creates an error for a descriptor with no execution position.
func NewOrderMissingError(name FunctionName) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeOrderMissing,
		Message:    "descriptor has no execution position",
		Descriptor: name,
	}
}

// NewOrderConflictError creates an error for two descriptors sharing a position.
func NewOrderConflictError(a, b FunctionName, pos int) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeOrderConflict,
		Message:    fmt.Sprintf("descriptors %s and %s share execution position %d", a, b, pos),
		Descriptor: b,
		Suggestion: "Every descriptor needs its own position.",
	}
}

// NewCompileAbortedError wraps a cancellation that stopped a compile pass.
func NewCompileAbortedError(name FunctionName, err error) *DescriptorError {
	return &DescriptorError{
		Code:       ErrCodeCompileAborted,
		Message:    "compile pass aborted before descriptor ran",
		Descriptor: name,
		Underlying: err,
	}
}

// IsProviderURLInvalid reports whether err aborted a pass because of the
// provider base URL.
func IsProviderURLInvalid(err error) bool {
	de := GetDescriptorError(err)
	return de != nil && de.Code == ErrCodeProviderURLInvalid
}

// GetDescriptorError extracts a DescriptorError from the chain, or returns nil.
func GetDescriptorError(err error) *DescriptorError {
	var de *DescriptorError
	if errors.As(err, &de) {
		return de
	}
	return nil
}
