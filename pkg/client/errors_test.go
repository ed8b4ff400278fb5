package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{
			name:       "client error should not retry",
			errorClass: ErrorClassClient,
			expected:   false,
		},
		{
			name:       "server error should retry",
			errorClass: ErrorClassServer,
			expected:   true,
		},
		{
			name:       "rate limit should retry",
			errorClass: ErrorClassRateLimit,
			expected:   true,
		},
		{
			name:       "network error should retry",
			errorClass: ErrorClassNetwork,
			expected:   true,
		},
		{
			name:       "malformed response should not retry",
			errorClass: ErrorClassMalformed,
			expected:   false,
		},
		{
			name:       "empty error class should not retry",
			errorClass: "",
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shouldRetry(tt.errorClass)
			if result != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, result, tt.expected)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	c := &Client{}

	tests := []struct {
		name     string
		status   int
		err      error
		expected ErrorClass
	}{
		{"transport error", 0, errors.New("dial tcp: connection refused"), ErrorClassNetwork},
		{"bad request", http.StatusBadRequest, nil, ErrorClassClient},
		{"forbidden", http.StatusForbidden, nil, ErrorClassClient},
		{"not found", http.StatusNotFound, nil, ErrorClassClient},
		{"too many requests", http.StatusTooManyRequests, nil, ErrorClassRateLimit},
		{"internal error", http.StatusInternalServerError, nil, ErrorClassServer},
		{"bad gateway", http.StatusBadGateway, nil, ErrorClassServer},
		{"ok", http.StatusOK, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.err == nil {
				resp = &http.Response{StatusCode: tt.status}
			}
			if got := c.classifyError(resp, tt.err); got != tt.expected {
				t.Errorf("classifyError() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with types",
			apiError: &APIError{
				StatusCode: 400,
				ErrorClass: ErrorClassClient,
				Message:    "Bad Request",
				Types:      []string{"bad_argument:per_page"},
			},
			expected: "HH client error (status 400): Bad Request: bad_argument:per_page",
		},
		{
			name: "error without types",
			apiError: &APIError{
				StatusCode: 503,
				ErrorClass: ErrorClassServer,
				Message:    "Service Unavailable",
			},
			expected: "HH server error (status 503): Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewAPIError(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusForbidden, Header: http.Header{}}
	body := []byte(`{"errors":[{"type":"forbidden"},{"type":"bad_argument","value":"area"}],"request_id":"abc123"}`)

	apiErr := newAPIError(resp, ErrorClassClient, body)

	if apiErr.StatusCode != 403 {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Message != "Forbidden" {
		t.Errorf("Message = %q, want Forbidden", apiErr.Message)
	}
	if apiErr.RequestID != "abc123" {
		t.Errorf("RequestID = %q", apiErr.RequestID)
	}
	if strings.Join(apiErr.Types, ",") != "forbidden,bad_argument:area" {
		t.Errorf("Types = %v", apiErr.Types)
	}

	plain := newAPIError(&http.Response{StatusCode: 502}, ErrorClassServer, []byte("<html>bad gateway</html>"))
	if len(plain.Types) != 0 || plain.RequestID != "" {
		t.Errorf("non-JSON body should leave details empty, got %+v", plain)
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := fmt.Errorf("search vacancies: %w", &NetworkError{
		Endpoint:   "/vacancies",
		Attempts:   3,
		ErrorClass: ErrorClassNetwork,
		Err:        cause,
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Error("errors.Is(err, ErrRetryExhausted) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatal("errors.As(*NetworkError) = false")
	}
	want := "hh /vacancies: network error after 3 attempts: connection reset by peer"
	if netErr.Error() != want {
		t.Errorf("Error() = %q, want %q", netErr.Error(), want)
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &APIError{StatusCode: http.StatusNotFound, ErrorClass: ErrorClassClient}
	forbidden := &APIError{StatusCode: http.StatusForbidden, ErrorClass: ErrorClassClient}

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"404", notFound, true},
		{"wrapped 404", fmt.Errorf("get vacancy 1: %w", notFound), true},
		{"403", forbidden, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}
