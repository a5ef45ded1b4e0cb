// Package jenkinsclient provides the main entry point for creating build
// server API clients.
package jenkinsclient

import (
	"fmt"
	"strings"

	"github.com/buildforge-io/jenkins/internal/client"
	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// New creates a client from the given configuration. All validation happens
// here; the returned client never fails on configuration afterwards.
func New(config *jenkins.Config) (jenkins.Client, error) {
	if config == nil {
		return nil, jenkins.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, jenkins.ErrBaseURLRequired
	}

	// Normalize the base URL; bare hostnames get https.
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	httpClient, err := http.NewClient(baseURL, buildOptions(config)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client.New(httpClient), nil
}

// NewWithAPIToken creates a client authenticated with a username and API
// token, the server's native credential scheme.
func NewWithAPIToken(baseURL, username, apiToken string) (jenkins.Client, error) {
	return New(&jenkins.Config{
		BaseURL:  baseURL,
		Username: username,
		APIToken: apiToken,
	})
}

// NewWithToken creates a client authenticated with a bearer token.
func NewWithToken(baseURL, token string) (jenkins.Client, error) {
	return New(&jenkins.Config{
		BaseURL:     baseURL,
		BearerToken: token,
	})
}

// buildOptions translates the flat Config into transport options.
func buildOptions(config *jenkins.Config) []http.Option {
	var opts []http.Option

	switch {
	case config.Username != "" || config.APIToken != "":
		opts = append(opts, http.WithBasicAuth(config.Username, config.APIToken))
	case config.BearerToken != "":
		opts = append(opts, http.WithBearerToken(config.BearerToken))
	}

	if config.UserAgent != "" {
		opts = append(opts, http.WithUserAgent(config.UserAgent))
	}

	if config.Timeout > 0 {
		opts = append(opts, http.WithTimeout(config.Timeout))
	}

	switch {
	case config.NoProxy:
		opts = append(opts, http.WithoutProxy())
	case config.Proxy != "":
		opts = append(opts, http.WithProxy(config.Proxy))
	}

	if config.SkipTLSVerify {
		opts = append(opts, http.WithTLSInsecure(true))
	}

	if config.DisableCrumb {
		opts = append(opts, http.WithoutCrumb())
	}

	if config.CrumbTTL > 0 {
		opts = append(opts, http.WithCrumbTTL(config.CrumbTTL))
	}

	opts = append(opts, http.WithRetryPolicy(retryPolicy(config)))

	if config.Logger != nil {
		opts = append(opts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, http.WithDebug(true))
	}

	return opts
}

func retryPolicy(config *jenkins.Config) http.RetryPolicy {
	policy := http.DefaultRetryPolicy()
	policy.MaxAttempts = config.RetryMax + 1

	if config.RetryBaseDelay > 0 {
		policy.BaseDelay = config.RetryBaseDelay
	}

	if config.RetryMultiplier > 0 {
		policy.Multiplier = config.RetryMultiplier
	}

	if config.RetryMaxDelay > 0 {
		policy.MaxDelay = config.RetryMaxDelay
	}

	policy.RetryableStatus = config.RetryableStatus

	return policy
}
