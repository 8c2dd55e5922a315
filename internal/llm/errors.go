package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyResponse is wrapped when the upstream answered without any text.
var ErrEmptyResponse = errors.New("empty response")

// ErrNotConfigured is returned by a client that has no provider.
var ErrNotConfigured = errors.New("judgment service not configured")

// ErrServiceUnavailable indicates a transient upstream overload. It is the
// only error the retry decorator retries.
type ErrServiceUnavailable struct {
	Err error
}

func (e *ErrServiceUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("judgment service unavailable: %v", e.Err)
	}
	return "judgment service unavailable"
}

func (e *ErrServiceUnavailable) Unwrap() error { return e.Err }

// ErrServiceError is any non-retryable upstream failure: bad credentials,
// rejected requests, empty responses.
type ErrServiceError struct {
	// Status is the upstream HTTP status, 0 when none was received.
	Status int
	Err    error
}

func (e *ErrServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("judgment service error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("judgment service error: %v", e.Err)
}

func (e *ErrServiceError) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema. It is not retried.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient overload.
func IsRetryable(err error) bool {
	var unavail *ErrServiceUnavailable
	return errors.As(err, &unavail)
}

// classifyStatus maps an upstream status code and error to the taxonomy.
// 503 and 529 (Anthropic "overloaded") are overloads; so is any error whose
// text reports an overloaded or UNAVAILABLE upstream.
func classifyStatus(status int, err error) error {
	if status == http.StatusServiceUnavailable || status == 529 || overloadMessage(err) {
		return &ErrServiceUnavailable{Err: err}
	}
	return &ErrServiceError{Status: status, Err: err}
}

func overloadMessage(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(strings.ToLower(msg), "overloaded") || strings.Contains(msg, "UNAVAILABLE")
}
