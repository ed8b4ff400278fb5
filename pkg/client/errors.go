package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during a request or retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// NetworkError is returned when a transient failure (transport error, 5xx, 429)
// persisted through every retry attempt.
type NetworkError struct {
	Endpoint   string
	Attempts   int
	ErrorClass ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("hh %s: %s error after %d attempts: %v",
		e.Endpoint, e.ErrorClass, e.Attempts, e.Err)
}

// Unwrap exposes both ErrRetryExhausted and the last attempt's error to errors.Is/As.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrRetryExhausted, e.Err}
}

// MalformedResponseError is returned when a response body does not decode into
// the expected shape. It is never retried.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("hh %s: malformed response: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx answer from the HeadHunter API.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string

	// Types holds the error types reported in the response body,
	// e.g. "not_found" or "bad_argument:per_page".
	Types     []string
	RequestID string

	// RetryAfter is the server-requested delay for 429 responses.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Types) > 0 {
		return fmt.Sprintf("HH %s error (status %d): %s: %s",
			e.ErrorClass, e.StatusCode, e.Message, strings.Join(e.Types, ", "))
	}
	return fmt.Sprintf("HH %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// IsNotFound reports whether err carries a 404 answer from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type errorBody struct {
	RequestID string `json:"request_id"`
	Errors    []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"errors"`
}

// newAPIError builds an APIError, decoding the HH error envelope when present.
func newAPIError(resp *http.Response, class ErrorClass, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		ErrorClass: class,
		Message:    http.StatusText(resp.StatusCode),
	}

	var decoded errorBody
	if err := json.Unmarshal(body, &decoded); err == nil {
		apiErr.RequestID = decoded.RequestID
		for _, e := range decoded.Errors {
			if e.Type == "" {
				continue
			}
			if e.Value != "" {
				apiErr.Types = append(apiErr.Types, e.Type+":"+e.Value)
			} else {
				apiErr.Types = append(apiErr.Types, e.Type)
			}
		}
	}
	return apiErr
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		// 4xx answers will not change on repetition
		return false
	case ErrorClassServer:
		return true
	case ErrorClassRateLimit:
		return true
	case ErrorClassNetwork:
		return true
	case ErrorClassMalformed:
		return false
	default:
		return false
	}
}
