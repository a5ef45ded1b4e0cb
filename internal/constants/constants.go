package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as the crumb
	// fetch.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry defaults.
const (
	// DefaultRetryMax is the default number of retries after the initial
	// attempt.
	DefaultRetryMax = 2

	// DefaultRetryBaseDelay is the base delay for exponential backoff.
	DefaultRetryBaseDelay = 200 * time.Millisecond

	// DefaultRetryMultiplier doubles the delay on every retry.
	DefaultRetryMultiplier = 2.0

	// DefaultRetryMaxDelay caps the backoff delay.
	DefaultRetryMaxDelay = 10 * time.Second
)

// Crumb handling.
const (
	// DefaultCrumbTTL is how long a fetched CSRF crumb is reused before a
	// fresh one is requested.
	DefaultCrumbTTL = 5 * time.Minute
)

// Error reporting.
const (
	// ErrorBodySnippetBytes bounds how much of an error response body is
	// kept for diagnostics.
	ErrorBodySnippetBytes = 4096
)
