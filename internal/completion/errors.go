package completion

import (
	"fmt"
	"time"
)

// UpstreamError is returned when the completion API answered with an error
// status. Message is extracted from the error body when possible, otherwise it
// is the raw body text.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion api error %d: %s", e.Status, e.Message)
}

// MalformedResponseError is returned when the completion API answered with a
// success status but a body that is not valid JSON. Body carries the raw text
// for diagnostics.
type MalformedResponseError struct {
	Body string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("completion api returned non-JSON response: %s", e.Body)
}

// UnexpectedShapeError is returned when the body is valid JSON but does not
// contain choices[0].message.content. Body carries the raw JSON so API drift
// can be debugged from the log line alone.
type UnexpectedShapeError struct {
	Body string
}

func (e *UnexpectedShapeError) Error() string {
	return fmt.Sprintf("unexpected completion response shape: %s", e.Body)
}

// TimeoutError is returned when a generate call exceeded its total deadline.
type TimeoutError struct {
	Limit time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("completion request timed out after %s", e.Limit)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
