package oai

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned before any network call when no API
	// key is configured.
	ErrMissingAPIKey = errors.New(
		"set OPENAI_API_KEY to summarize conversations",
	)

	// ErrUnparsableResponse is returned when a completed response
	// carries no usable summary object.
	ErrUnparsableResponse = errors.New(
		"failed to parse summary from model response",
	)
)

// StatusError is a non-200 reply from the API.
type StatusError struct {
	Code   int
	Detail string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("openai api error (%d): %s", e.Code, e.Detail)
}

// IncompleteError is a reply whose status is anything other than
// completed, e.g. a response cut off by the output token cap.
type IncompleteError struct {
	Status string
	Reason string
}

// Error returns the error message.
func (e *IncompleteError) Error() string {
	return fmt.Sprintf(
		"openai summarizer returned status=%s (reason=%s)",
		e.Status, e.Reason,
	)
}
