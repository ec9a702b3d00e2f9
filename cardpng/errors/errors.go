package errors

import "fmt"

// Error types for card-png operations
var (
	// ErrInvalidSignature is returned when the input does not start with the PNG signature
	ErrInvalidSignature = &CardError{Code: "INVALID_SIGNATURE", Message: "not a PNG stream"}

	// ErrTruncatedStream is returned when a chunk claims more bytes than the stream holds
	ErrTruncatedStream = &CardError{Code: "TRUNCATED_STREAM", Message: "truncated PNG stream"}

	// ErrMissingTerminator is returned when no IEND chunk exists to insert before
	ErrMissingTerminator = &CardError{Code: "MISSING_TERMINATOR", Message: "IEND chunk not found"}

	// ErrDecode is returned when a metadata chunk value is not valid Base64 or UTF-8
	ErrDecode = &CardError{Code: "DECODE_FAILED", Message: "failed to decode metadata"}

	// ErrInvalidKeyword is returned when a tEXt keyword breaks the PNG keyword rules
	ErrInvalidKeyword = &CardError{Code: "INVALID_KEYWORD", Message: "invalid tEXt keyword"}

	// ErrCardNotFound is returned when a stream or storage holds no character card
	ErrCardNotFound = &CardError{Code: "CARD_NOT_FOUND", Message: "character card not found"}

	// ErrCardParse is returned when an embedded payload is not a card JSON document
	ErrCardParse = &CardError{Code: "CARD_PARSE_FAILED", Message: "failed to parse character card"}
)

// CardError represents a structured error in card-png operations
type CardError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *CardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CardError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code, so that copies produced by
// WithCause and WithDetail still match their sentinel.
func (e *CardError) Is(target error) bool {
	t, ok := target.(*CardError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error
func (e *CardError) WithCause(cause error) *CardError {
	return &CardError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *CardError) WithDetail(key string, value interface{}) *CardError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &CardError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *CardError) WithMessage(message string) *CardError {
	return &CardError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// NewInvalidSignatureError creates an invalid signature error for the given header bytes
func NewInvalidSignatureError(header []byte) error {
	return ErrInvalidSignature.WithDetail("header", fmt.Sprintf("% x", header))
}

// NewTruncatedStreamError creates a truncated stream error for the chunk at offset
func NewTruncatedStreamError(offset int, need uint64, remaining int) error {
	return ErrTruncatedStream.
		WithDetail("offset", offset).
		WithDetail("need", need).
		WithDetail("remaining", remaining)
}

// NewMissingTerminatorError creates a missing IEND error
func NewMissingTerminatorError(size int) error {
	return ErrMissingTerminator.WithDetail("size", size)
}

// NewDecodeError creates a decode error for the chunk keyed by keyword
func NewDecodeError(keyword string, cause error) error {
	return ErrDecode.
		WithDetail("keyword", keyword).
		WithCause(cause)
}

// NewInvalidKeywordError creates an invalid keyword error
func NewInvalidKeywordError(keyword string, reason string) error {
	return ErrInvalidKeyword.
		WithDetail("keyword", keyword).
		WithMessage("invalid tEXt keyword: " + reason)
}

// NewCardNotFoundError creates a card not found error
func NewCardNotFoundError(name string) error {
	if name == "" {
		return ErrCardNotFound
	}
	return ErrCardNotFound.WithDetail("name", name)
}

// NewCardParseError creates a card parse error
func NewCardParseError(keyword string, cause error) error {
	return ErrCardParse.
		WithDetail("keyword", keyword).
		WithCause(cause)
}

// IsCardError checks if an error is a CardError
func IsCardError(err error) bool {
	_, ok := err.(*CardError)
	return ok
}

// GetErrorCode extracts the error code from a CardError
func GetErrorCode(err error) string {
	if cardErr, ok := err.(*CardError); ok {
		return cardErr.Code
	}
	return ""
}
