package jenkinsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildforge-io/jenkins/pkg/jenkins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	client, err := New(nil)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, jenkins.ErrConfigRequired)
}

func TestNewRequiresBaseURL(t *testing.T) {
	client, err := New(&jenkins.Config{})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, jenkins.ErrBaseURLRequired)
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	client, err := New(&jenkins.Config{BaseURL: "https://ci.example.com?query=1"})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, jenkins.IsConfig(err))
}

func TestNewRejectsInvalidProxy(t *testing.T) {
	client, err := New(&jenkins.Config{
		BaseURL: "https://ci.example.com",
		Proxy:   "::bad::",
	})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, jenkins.IsConfig(err))
}

func TestNewReturnsWorkingClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/json", r.URL.Path)

		user, token, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", token)

		_, _ = w.Write([]byte(`{"jobs":[{"name":"deploy","url":"http://ci/job/deploy/","color":"blue"}]}`))
	}))
	defer server.Close()

	client, err := New(&jenkins.Config{
		BaseURL:      server.URL,
		Username:     "admin",
		APIToken:     "secret",
		DisableCrumb: true,
	})
	require.NoError(t, err)

	list, err := client.Jobs().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, "deploy", list.Jobs[0].Name)
}

func TestNewTrailingSlashEquivalence(t *testing.T) {
	var paths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"jobs":[]}`))
	}))
	defer server.Close()

	for _, base := range []string{server.URL, server.URL + "/"} {
		client, err := New(&jenkins.Config{BaseURL: base, DisableCrumb: true})
		require.NoError(t, err)

		_, err = client.Jobs().List(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, paths, 2)
	assert.Equal(t, paths[0], paths[1])
}

func TestNewRetryConfigHonored(t *testing.T) {
	var attempts int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(&jenkins.Config{
		BaseURL:        server.URL,
		DisableCrumb:   true,
		RetryMax:       2,
		RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Jobs().List(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestNewRetryDisabledByDefault(t *testing.T) {
	var attempts int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(&jenkins.Config{BaseURL: server.URL, DisableCrumb: true})
	require.NoError(t, err)

	_, err = client.Jobs().List(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestNewWithAPIToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "tok", token)

		_, _ = w.Write([]byte(`{"name":"alice","anonymous":false,"authorities":[]}`))
	}))
	defer server.Close()

	client, err := NewWithAPIToken(server.URL, "alice", "tok")
	require.NoError(t, err)

	who, err := client.Users().WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", who.Name)
}
