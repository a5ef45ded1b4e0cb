// Package http implements the request-execution pipeline shared by every
// API operation: base-URL normalization, crumb middleware, retry with
// deterministic exponential backoff, and mapping of every failure into the
// jenkins error taxonomy.
package http

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buildforge-io/jenkins/internal/constants"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultUserAgent = "buildforge-jenkins/" + jenkins.Version

// Client executes jenkins.Request values against one server. It is safe
// for concurrent use; the crumb cache is the only mutable shared state.
type Client struct {
	baseURL    *url.URL
	httpClient *retryablehttp.Client
	headers    map[string]string
	logger     jenkins.Logger
	debug      bool
}

type options struct {
	userAgent     string
	timeout       time.Duration
	retry         RetryPolicy
	crumbTTL      time.Duration
	crumbDisabled bool
	basicUser     string
	basicToken    string
	bearerToken   string
	proxyURL      string
	noProxy       bool
	insecureTLS   bool
	logger        jenkins.Logger
	debug         bool
	transport     http.RoundTripper
	headers       map[string]string
}

// Option configures the client. Options only accumulate configuration and
// never fail; NewClient is the single fallible step.
type Option func(*options)

// WithBasicAuth attaches HTTP basic credentials to every request.
func WithBasicAuth(user, token string) Option {
	return func(o *options) {
		o.basicUser = user
		o.basicToken = token
	}
}

// WithBearerToken attaches a bearer token to every request.
func WithBearerToken(token string) Option {
	return func(o *options) {
		o.bearerToken = token
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *options) {
		o.retry = policy
	}
}

// WithCrumbTTL sets how long a fetched crumb is reused.
func WithCrumbTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.crumbTTL = ttl
	}
}

// WithoutCrumb disables the CSRF handshake.
func WithoutCrumb() Option {
	return func(o *options) {
		o.crumbDisabled = true
	}
}

// WithProxy routes all requests through the given proxy URL.
func WithProxy(proxyURL string) Option {
	return func(o *options) {
		o.proxyURL = proxyURL
	}
}

// WithoutProxy ignores proxy environment variables.
func WithoutProxy() Option {
	return func(o *options) {
		o.noProxy = true
	}
}

// WithTLSInsecure disables certificate verification.
func WithTLSInsecure(insecure bool) Option {
	return func(o *options) {
		o.insecureTLS = insecure
	}
}

// WithLogger sets a logger.
func WithLogger(logger jenkins.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithTransport replaces the underlying round tripper. The crumb layer
// still wraps it unless WithoutCrumb is also given.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithDefaultHeader adds a header to every request.
func WithDefaultHeader(name, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}

		o.headers[name] = value
	}
}

// NewClient validates the base URL, builds the transport stack and returns
// a ready client. All failures are configuration errors; nothing touches
// the network here.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	cfg := options{retry: DefaultRetryPolicy()}
	for _, opt := range opts {
		opt(&cfg)
	}

	headers := make(map[string]string)
	for name, value := range cfg.headers {
		headers[name] = value
	}

	if cfg.userAgent == "" {
		cfg.userAgent = defaultUserAgent
	}

	headers["User-Agent"] = cfg.userAgent

	switch {
	case cfg.basicUser != "" || cfg.basicToken != "":
		credentials := cfg.basicUser + ":" + cfg.basicToken
		headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	case cfg.bearerToken != "":
		headers["Authorization"] = "Bearer " + cfg.bearerToken
	}

	transport := cfg.transport
	if transport == nil {
		transport, err = buildTransport(&cfg)
		if err != nil {
			return nil, err
		}
	}

	if !cfg.crumbDisabled {
		transport = &crumbTransport{
			next:      transport,
			cache:     newCrumbCache(cfg.crumbTTL),
			issuerURL: joinURL(base, []string{"crumbIssuer", "api", "json"}, nil),
			headers:   headers,
		}
	}

	if cfg.timeout <= 0 {
		cfg.timeout = constants.DefaultHTTPTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   cfg.timeout,
	}
	retryClient.RetryMax = cfg.retry.retries()
	retryClient.RetryWaitMin = cfg.retry.BaseDelay
	retryClient.RetryWaitMax = cfg.retry.MaxDelay
	retryClient.CheckRetry = cfg.retry.checkRetry
	retryClient.Backoff = cfg.retry.backoff
	// Exhausted retries must surface the last real failure, not a
	// synthesized "giving up" error.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if cfg.logger != nil {
		retryClient.Logger = &leveledLogger{logger: cfg.logger}
	}

	return &Client{
		baseURL:    base,
		httpClient: retryClient,
		headers:    headers,
		logger:     cfg.logger,
		debug:      cfg.debug,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do executes one request through the full pipeline. A non-2xx status is
// returned as an error with the response alongside for inspection.
func (c *Client) Do(ctx context.Context, req *jenkins.Request) (*jenkins.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	requestURL := joinURL(c.baseURL, req.Segments, req.Query)

	var (
		body        []byte
		contentType string
	)

	switch {
	case len(req.Form) > 0:
		body = []byte(encodePairs(req.Form))
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		body = req.Body
		contentType = req.ContentType
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, &jenkins.ConfigError{Message: "invalid request", Err: err}
	}

	httpReq.Header.Set("Accept", "application/json")

	for name, value := range c.headers {
		httpReq.Header.Set(name, value)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	safeURL := sanitizeURL(requestURL)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": method,
			"url":    safeURL,
		})
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if resp != nil {
			drain(resp)
		}

		crumbErr := &jenkins.CrumbError{}
		if errors.As(err, &crumbErr) {
			return nil, crumbErr
		}

		return nil, &jenkins.TransportError{Method: method, URL: safeURL, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &jenkins.TransportError{Method: method, URL: safeURL, Err: err}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      method,
			"url":         safeURL,
			"status_code": resp.StatusCode,
		})
	}

	response := &jenkins.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
		Method:     method,
		URL:        safeURL,
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return response, statusError(method, safeURL, resp, data)
	}

	return response, nil
}

// buildTransport derives the round tripper from proxy and TLS settings.
func buildTransport(cfg *options) (http.RoundTripper, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport, nil
	}

	transport := base.Clone()

	switch {
	case cfg.noProxy:
		transport.Proxy = nil
	case cfg.proxyURL != "":
		proxy, err := url.Parse(cfg.proxyURL)
		if err != nil || proxy.Scheme == "" || proxy.Host == "" {
			return nil, &jenkins.ConfigError{Message: fmt.Sprintf("invalid proxy URL %q", cfg.proxyURL), Err: err}
		}

		transport.Proxy = http.ProxyURL(proxy)
	}

	if cfg.insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	return transport, nil
}

// normalizeBaseURL validates the configured base URL and strips trailing
// slashes so that joined request URLs come out identical with or without
// one.
func normalizeBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &jenkins.ConfigError{Message: "base URL is required"}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, &jenkins.ConfigError{Message: fmt.Sprintf("invalid base URL %q", raw), Err: err}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, &jenkins.ConfigError{Message: fmt.Sprintf("base URL %q must be an absolute http(s) URL", raw)}
	}

	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return nil, &jenkins.ConfigError{Message: "base URL must not include a query or fragment"}
	}

	parsed.User = nil
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""

	return parsed, nil
}

// joinURL builds a request URL from the base, percent-encoding every path
// segment individually so a `/` inside a job name never becomes an extra
// path level. Empty parameter lists produce no trailing `?`.
func joinURL(base *url.URL, segments []string, query []jenkins.Param) string {
	var b strings.Builder

	b.WriteString(base.String())

	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}

	if encoded := encodePairs(query); encoded != "" {
		b.WriteByte('?')
		b.WriteString(encoded)
	}

	return b.String()
}

// encodePairs form-encodes parameter pairs preserving their order.
func encodePairs(pairs []jenkins.Param) string {
	if len(pairs) == 0 {
		return ""
	}

	var b strings.Builder

	for i, pair := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}

		b.WriteString(url.QueryEscape(pair.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.Value))
	}

	return b.String()
}

// sanitizeURL strips query, fragment and userinfo for error contexts.
func sanitizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.User = nil

	return parsed.String()
}

// statusError maps a non-success response to an APIError.
func statusError(method, safeURL string, resp *http.Response, body []byte) error {
	snippet := body
	if len(snippet) > constants.ErrorBodySnippetBytes {
		snippet = snippet[:constants.ErrorBodySnippetBytes]
	}

	message := resp.Header.Get("X-Error")
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	apiErr := &jenkins.APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		URL:        safeURL,
		Message:    message,
		Body:       snippet,
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}

	return apiErr
}

// parseRetryAfter supports both delay-seconds and HTTP-date values.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds > 0 {
			return time.Duration(seconds) * time.Second
		}

		return 0
	}

	if at, err := http.ParseTime(value); err == nil {
		if delay := at.Sub(now); delay > 0 {
			return delay
		}
	}

	return 0
}

// leveledLogger adapts jenkins.Logger to the retryablehttp logger.
type leveledLogger struct {
	logger jenkins.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, logFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, logFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, logFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, logFields(keysAndValues))
}

func logFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)
