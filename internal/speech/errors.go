package speech

import (
	"context"
	"errors"
	"fmt"
)

// Common speech errors
var (
	// ErrEngineNotAvailable indicates the selected engine cannot run here
	ErrEngineNotAvailable = errors.New("speech engine is not available")

	// ErrInvalidEngine indicates an unknown engine was specified
	ErrInvalidEngine = errors.New("invalid speech engine specified")

	// ErrSynthesisFailed indicates synthesis operation failed
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrAudioDeviceUnavailable indicates audio device cannot be accessed
	ErrAudioDeviceUnavailable = errors.New("audio device unavailable")

	// ErrInvalidInput indicates an utterance or setting is out of range
	ErrInvalidInput = errors.New("invalid speech input")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates the utterance was superseded or canceled
	ErrCanceled = errors.New("utterance canceled")

	// ErrClosed indicates the speaker has been closed
	ErrClosed = errors.New("speaker is closed")
)

// ErrorCode identifies specific error types
type ErrorCode string

const (
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeEngineTimeout     ErrorCode = "ENGINE_TIMEOUT"
	ErrorCodeRateLimited       ErrorCode = "RATE_LIMITED"

	ErrorCodeAudioFailure ErrorCode = "AUDIO_FAILURE"
	ErrorCodeAudioFormat  ErrorCode = "AUDIO_FORMAT"

	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorCodeCanceled     ErrorCode = "CANCELED"
)

// SpeechError is a speech failure with a code and optional context.
type SpeechError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// NewSpeechError creates a new speech error.
func NewSpeechError(code ErrorCode, message string, cause error) *SpeechError {
	return &SpeechError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// Error implements the error interface
func (e *SpeechError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SpeechError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *SpeechError) WithContext(key string, value any) *SpeechError {
	e.Context[key] = value
	return e
}

// IsRetryable returns true if the same request may succeed later.
func (e *SpeechError) IsRetryable() bool {
	switch e.Code {
	case ErrorCodeEngineTimeout, ErrorCodeRateLimited:
		return true
	default:
		return false
	}
}

// IsCanceled reports whether err means the utterance was superseded. Such
// errors are expected and never shown to the user.
func IsCanceled(err error) bool {
	if errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled) {
		return true
	}
	var se *SpeechError
	return errors.As(err, &se) && se.Code == ErrorCodeCanceled
}
