package jenkins

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrBaseURLRequired = errors.New("base URL is required")
)

// ConfigError reports invalid input at construction time (bad base URL,
// bad proxy string). It is always surfaced synchronously from the builder,
// never from a request.
type ConfigError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Message, e.Err)
	}

	return "invalid configuration: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// APIError reports a response received with a status outside the success
// range. URL is sanitized: no query string, fragment or userinfo.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
	Body       []byte
	// RetryAfter carries the server-provided Retry-After delay for 429
	// responses, zero otherwise.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	s := fmt.Sprintf("HTTP %d (%s %s)", e.StatusCode, e.Method, e.URL)
	if e.Message != "" {
		s += ": " + e.Message
	}

	return s
}

// TransportError reports that the underlying send failed before any response
// was received (DNS, connection refused, timeout, cancellation).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a success response whose body could not be interpreted.
// The server answered, so decode failures are never retried.
type DecodeError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error (HTTP %d) during %s %s: %v", e.StatusCode, e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// CrumbError reports that the CSRF crumb handshake itself failed: either the
// crumb fetch could not complete, or the server rejected the crumb even
// after one refresh. Distinct from APIError so callers can tell an
// authentication-handshake failure from a failure of the real operation.
type CrumbError struct {
	Err error
}

// Error implements the error interface.
func (e *CrumbError) Error() string {
	return fmt.Sprintf("crumb handshake failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *CrumbError) Unwrap() error {
	return e.Err
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	cfgErr := &ConfigError{}

	return errors.As(err, &cfgErr) ||
		errors.Is(err, ErrConfigRequired) ||
		errors.Is(err, ErrBaseURLRequired)
}

// IsNotFound reports whether err is an HTTP 404 from the server.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsAuth reports whether err is an HTTP 401 or 403 from the server.
func IsAuth(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden
	}

	return false
}

// IsConflict reports whether err is an HTTP 409 or 412 from the server.
func IsConflict(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusConflict ||
			apiErr.StatusCode == http.StatusPreconditionFailed
	}

	return false
}

// IsRateLimited reports whether err is an HTTP 429 from the server.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// RetryAfter extracts the Retry-After delay from a rate-limit error, or
// zero when none was provided.
func RetryAfter(err error) time.Duration {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}

	return 0
}

// StatusCode extracts the HTTP status code carried by err, when it has one.
func StatusCode(err error) (int, bool) {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}

	decErr := &DecodeError{}
	if errors.As(err, &decErr) {
		return decErr.StatusCode, true
	}

	return 0, false
}

// IsRetryable reports whether err represents a transient failure under the
// default classification: transport failures and a conservative subset of
// status codes. Crumb, decode and other client errors are terminal.
func IsRetryable(err error) bool {
	crumbErr := &CrumbError{}
	if errors.As(err, &crumbErr) {
		return false
	}

	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return DefaultRetryableStatus(apiErr.StatusCode)
	}

	return false
}

// DefaultRetryableStatus is the default predicate for status-based retries:
// 429 plus the 5xx codes that typically indicate a transient upstream
// condition.
func DefaultRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
