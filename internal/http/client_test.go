package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/buildforge-io/jenkins/pkg/jenkins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
	}
}

func TestNewClientNormalizesBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "https://ci.example.com", expected: "https://ci.example.com"},
		{name: "trailing slash", input: "https://ci.example.com/", expected: "https://ci.example.com"},
		{name: "sub path", input: "https://ci.example.com/jenkins", expected: "https://ci.example.com/jenkins"},
		{name: "sub path trailing slash", input: "https://ci.example.com/jenkins/", expected: "https://ci.example.com/jenkins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, client.BaseURL())
		})
	}
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "   "},
		{name: "no scheme", input: "not a url"},
		{name: "wrong scheme", input: "ftp://ci.example.com"},
		{name: "missing host", input: "https://"},
		{name: "query", input: "https://ci.example.com?depth=1"},
		{name: "fragment", input: "https://ci.example.com#top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.input)
			require.Error(t, err)
			assert.Nil(t, client)
			assert.True(t, jenkins.IsConfig(err))
		})
	}
}

func TestNewClientRejectsInvalidProxy(t *testing.T) {
	client, err := NewClient("https://ci.example.com", WithProxy("not a proxy"))
	require.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, jenkins.IsConfig(err))
}

func TestDoBuildsRequestURL(t *testing.T) {
	var gotPath, gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb())
	require.NoError(t, err)

	req := jenkins.Get("job", "demo job", "lastBuild", "api", "json").
		WithQuery("depth", "1").
		WithQuery("tree", "builds[number]")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/job/demo%20job/lastBuild/api/json", gotPath)
	assert.Equal(t, "depth=1&tree=builds%5Bnumber%5D", gotQuery)
}

func TestDoEscapesSlashInSegments(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb())
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("job", "a/b c"))
	require.NoError(t, err)
	assert.Equal(t, "/job/a%2Fb%20c", gotPath)
}

func TestDoSendsBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret-token", token)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithBasicAuth("admin", "secret-token"))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("api", "json"))
	require.NoError(t, err)
}

func TestDoSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithBearerToken("jwt-token"))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("api", "json"))
	require.NoError(t, err)
}

func TestDoEncodesFormBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "release/1.2", r.PostForm.Get("BRANCH"))
		assert.Equal(t, "true", r.PostForm.Get("DEPLOY"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb())
	require.NoError(t, err)

	req := jenkins.Post("job", "demo", "buildWithParameters").
		WithForm("BRANCH", "release/1.2").
		WithForm("DEPLOY", "true")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithRetryPolicy(fastRetryPolicy(3)))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), jenkins.Get("job", "missing", "api", "json"))
	require.Error(t, err)
	assert.True(t, jenkins.IsNotFound(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDoRetriesServerErrors(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithRetryPolicy(fastRetryPolicy(3)))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), jenkins.Get("api", "json"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestDoReturnsLastErrorWhenRetriesExhausted(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithRetryPolicy(fastRetryPolicy(2)))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("api", "json"))
	require.Error(t, err)

	status, ok := jenkins.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestDoRetryAfterParsedOnRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithRetryPolicy(fastRetryPolicy(1)))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("api", "json"))
	require.Error(t, err)
	assert.True(t, jenkins.IsRateLimited(err))
	assert.Equal(t, 7*time.Second, jenkins.RetryAfter(err))
}

func TestDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithRetryPolicy(fastRetryPolicy(1)))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("api", "json"))
	require.Error(t, err)

	transportErr := &jenkins.TransportError{}
	assert.ErrorAs(t, err, &transportErr)
}

func TestDoAPIErrorCarriesContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("job already exists"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb())
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("createItem"))
	require.Error(t, err)
	assert.True(t, jenkins.IsConflict(err))

	apiErr := &jenkins.APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.MethodGet, apiErr.Method)
	assert.Contains(t, apiErr.URL, "/createItem")
	assert.Equal(t, "job already exists", string(apiErr.Body))
}

func TestDoSanitizesErrorURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb())
	require.NoError(t, err)

	req := jenkins.Get("api", "json").WithQuery("token", "hunter2")

	_, err = client.Do(context.Background(), req)
	require.Error(t, err)

	apiErr := &jenkins.APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.NotContains(t, apiErr.URL, "hunter2")
	assert.NotContains(t, apiErr.Error(), "hunter2")
}

func TestDoSetsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom-agent/2.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb(), WithUserAgent("custom-agent/2.0"))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), jenkins.Get("api", "json"))
	require.NoError(t, err)
}

func TestDoPerRequestHeaderOverrides(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithoutCrumb())
	require.NoError(t, err)

	req := jenkins.Get("job", "demo", "lastBuild", "consoleText").WithHeader("Accept", "text/plain")

	_, err = client.Do(context.Background(), req)
	require.NoError(t, err)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, 30*time.Second, parseRetryAfter("30", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-5", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("garbage", now))

	date := now.Add(90 * time.Second).Format(http.TimeFormat)
	assert.Equal(t, 90*time.Second, parseRetryAfter(date, now))
}
