package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when no Gemini credential is configured.
	// It is fatal and reported before any network call is attempted.
	ErrMissingAPIKey = errors.New("gemini API key is required")

	// ErrEmptyResponse is returned when the model produced no text. Fatal,
	// not retried.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrModelOverloaded is returned once the overload retry budget is
	// exhausted.
	ErrModelOverloaded = errors.New("model overloaded, retries exhausted")
)

// SchemaError indicates the model's output failed to parse as JSON
// conforming to the response schema. A conformance bug, not a capacity
// issue: never retried, distinct from the overload path.
type SchemaError struct {
	Raw string // The offending model output
	Err error  // Underlying parse or validation failure
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model output violates response schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
