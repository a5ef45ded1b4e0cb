package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/buildforge-io/jenkins/internal/constants"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// Static errors for err113 compliance.
var (
	errCrumbEmpty     = errors.New("crumb issuer returned an empty crumb")
	errCrumbRejected  = errors.New("server rejected the crumb after refresh")
	errBodyNotReplay  = errors.New("request body cannot be replayed")
	errCrumbBadStatus = errors.New("crumb issuer returned an error status")
)

// crumbState is an immutable crumb snapshot. The cache swaps whole values
// so concurrent readers never observe a half-written crumb.
type crumbState struct {
	field   string
	value   string
	expires time.Time
}

// crumbCache holds the shared crumb for one client. Refresh happens under
// the mutex, so concurrent state-changing requests wait for a single fetch
// instead of stampeding the issuer.
type crumbCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	state *crumbState
}

func newCrumbCache(ttl time.Duration) *crumbCache {
	if ttl <= 0 {
		ttl = constants.DefaultCrumbTTL
	}

	return &crumbCache{ttl: ttl, now: time.Now}
}

// get returns a valid crumb, fetching a fresh one when the cached snapshot
// is absent or expired.
func (c *crumbCache) get(ctx context.Context, fetch func(context.Context) (string, string, error)) (*crumbState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != nil && c.now().Before(c.state.expires) {
		return c.state, nil
	}

	field, value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.state = &crumbState{
		field:   field,
		value:   value,
		expires: c.now().Add(c.ttl),
	}

	return c.state, nil
}

// invalidate drops the cached crumb, but only when it is still the snapshot
// the caller saw; a crumb refreshed concurrently by another request is left
// in place.
func (c *crumbCache) invalidate(seen *crumbState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == seen {
		c.state = nil
	}
}

// crumbResponse is the JSON payload of GET /crumbIssuer/api/json.
type crumbResponse struct {
	Field string `json:"crumbRequestField"`
	Crumb string `json:"crumb"`
}

// crumbTransport attaches a CSRF crumb to every state-changing request.
// It sits below the retry layer, so each retry attempt re-runs the crumb
// check and never reuses a header that expired between attempts.
type crumbTransport struct {
	next      http.RoundTripper
	cache     *crumbCache
	issuerURL string
	// headers applied to crumb fetches: authorization and user agent.
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *crumbTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return t.next.RoundTrip(req)
	}

	state, err := t.cache.get(req.Context(), t.fetch)
	if err != nil {
		return nil, err
	}

	attempt := req.Clone(req.Context())
	attempt.Header.Set(state.field, state.value)

	resp, err := t.next.RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		return resp, err
	}

	body, err := replaceBody(resp)
	if err != nil {
		return resp, nil //nolint:nilerr // keep the 403 visible when the body is unreadable
	}

	if !crumbRejected(body) {
		return resp, nil
	}

	// The server invalidated our crumb mid-flight. Refresh and resend
	// exactly once; a second rejection surfaces as a crumb error.
	drain(resp)
	t.cache.invalidate(state)

	state, err = t.cache.get(req.Context(), t.fetch)
	if err != nil {
		return nil, err
	}

	retry, err := replayRequest(req)
	if err != nil {
		return nil, &jenkins.CrumbError{Err: err}
	}

	retry.Header.Set(state.field, state.value)

	resp, err = t.next.RoundTrip(retry)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden {
		if body, bodyErr := replaceBody(resp); bodyErr == nil && crumbRejected(body) {
			drain(resp)

			return nil, &jenkins.CrumbError{Err: errCrumbRejected}
		}
	}

	return resp, nil
}

// fetch performs the crumb handshake. Every failure mode maps to a crumb
// error so callers can tell the handshake apart from the real operation.
func (t *crumbTransport) fetch(ctx context.Context) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.issuerURL, nil)
	if err != nil {
		return "", "", &jenkins.CrumbError{Err: err}
	}

	for name, value := range t.headers {
		req.Header.Set(name, value)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return "", "", &jenkins.CrumbError{Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.ErrorBodySnippetBytes))
	if err != nil {
		return "", "", &jenkins.CrumbError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", "", &jenkins.CrumbError{
			Err: fmt.Errorf("%w: HTTP %d", errCrumbBadStatus, resp.StatusCode),
		}
	}

	var payload crumbResponse

	err = json.Unmarshal(body, &payload)
	if err != nil {
		return "", "", &jenkins.CrumbError{Err: err}
	}

	if payload.Field == "" || payload.Crumb == "" {
		return "", "", &jenkins.CrumbError{Err: errCrumbEmpty}
	}

	return payload.Field, payload.Crumb, nil
}

// replayRequest clones req with a fresh body for a second send.
func replayRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}

	if req.GetBody == nil {
		return nil, errBodyNotReplay
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}

	retry.Body = body

	return retry, nil
}

// replaceBody reads a bounded prefix of the response body and puts it back
// so the response stays consumable by the caller.
func replaceBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.ErrorBodySnippetBytes))
	if err != nil {
		return nil, err
	}

	rest, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if err != nil {
		rest = nil
	}

	resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), bytes.NewReader(rest)))

	return body, nil
}

// crumbRejected reports whether a 403 body names a crumb mismatch, the
// server's signal that our cached crumb is stale.
func crumbRejected(body []byte) bool {
	return strings.Contains(strings.ToLower(string(body)), "crumb")
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
