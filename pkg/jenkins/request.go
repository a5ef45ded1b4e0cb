package jenkins

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Param is an ordered key/value pair used for query strings and form bodies.
// Order is preserved end to end so that tree-style filters encode
// deterministically.
type Param struct {
	Key   string
	Value string
}

// Request describes a single REST operation: method, path segments, ordered
// query/form parameters and an optional raw body. It carries no network
// state; the transport in internal/http turns it into an HTTP call.
type Request struct {
	Method   string
	Segments []string
	Query    []Param
	Form     []Param
	Body     []byte
	// ContentType applies to Body. Form parameters always encode as
	// application/x-www-form-urlencoded.
	ContentType string
	Headers     map[string]string
}

// NewRequest creates a request for an arbitrary HTTP method.
func NewRequest(method string, segments ...string) *Request {
	return &Request{
		Method:   method,
		Segments: segments,
	}
}

// Get creates a GET request for the given path segments.
func Get(segments ...string) *Request {
	return NewRequest(http.MethodGet, segments...)
}

// Post creates a POST request for the given path segments.
func Post(segments ...string) *Request {
	return NewRequest(http.MethodPost, segments...)
}

// WithQuery appends a query parameter.
func (r *Request) WithQuery(key, value string) *Request {
	r.Query = append(r.Query, Param{Key: key, Value: value})

	return r
}

// WithForm appends a form field. Setting form fields discards any raw body.
func (r *Request) WithForm(key, value string) *Request {
	r.Body = nil
	r.ContentType = ""
	r.Form = append(r.Form, Param{Key: key, Value: value})

	return r
}

// WithBody sets a raw body (e.g. config XML). Setting a body discards any
// form fields.
func (r *Request) WithBody(contentType string, body []byte) *Request {
	r.Form = nil
	r.Body = body
	r.ContentType = contentType

	return r
}

// WithHeader sets a request header.
func (r *Request) WithHeader(name, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}

	r.Headers[name] = value

	return r
}

// Response is the raw result of an executed request. The transport only
// hands it to callers after confirming a success status; non-2xx responses
// are returned as errors instead.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte

	// Method and URL of the request that produced this response, kept for
	// error context.
	Method string
	URL    string
}

// JSON decodes the response body into v. Failures are reported as a
// *DecodeError.
func (r *Response) JSON(v any) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return &DecodeError{
			Method:     r.Method,
			URL:        r.URL,
			StatusCode: r.StatusCode,
			Err:        err,
		}
	}

	return nil
}

// JobPath addresses a job, possibly nested inside folders. A path like
// "platform/deploy" maps to the URL segments job/platform/job/deploy.
type JobPath string

// Segments returns the URL path segments for the job, interleaving the
// "job" marker the server expects before every name component.
func (p JobPath) Segments() []string {
	var segments []string

	for _, part := range strings.Split(string(p), "/") {
		if part == "" {
			continue
		}

		segments = append(segments, "job", part)
	}

	return segments
}

// String implements fmt.Stringer.
func (p JobPath) String() string {
	return string(p)
}

var _ fmt.Stringer = JobPath("")
