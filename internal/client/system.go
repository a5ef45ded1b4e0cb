package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// SystemClient implements jenkins.SystemClient
type SystemClient struct {
	httpClient *http.Client
}

// NewSystemClient creates a new system client
func NewSystemClient(httpClient *http.Client) *SystemClient {
	return &SystemClient{httpClient: httpClient}
}

// Root implements jenkins.SystemClient.Root
func (c *SystemClient) Root(ctx context.Context, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "getting instance root")
}

// OverallLoad implements jenkins.SystemClient.OverallLoad
func (c *SystemClient) OverallLoad(ctx context.Context) (json.RawMessage, error) {
	return getJSON(ctx, c.httpClient, jenkins.Get("overallLoad", "api", "json"), "getting overall load")
}

// LoadStatistics implements jenkins.SystemClient.LoadStatistics
func (c *SystemClient) LoadStatistics(ctx context.Context) (json.RawMessage, error) {
	return getJSON(ctx, c.httpClient, jenkins.Get("loadStatistics", "api", "json"), "getting load statistics")
}

// Crumb implements jenkins.SystemClient.Crumb
func (c *SystemClient) Crumb(ctx context.Context) (*jenkins.Crumb, error) {
	resp, err := c.httpClient.Do(ctx, jenkins.Get("crumbIssuer", "api", "json"))
	if err != nil {
		return nil, fmt.Errorf("getting crumb: %w", err)
	}

	var crumb jenkins.Crumb
	if err := resp.JSON(&crumb); err != nil {
		return nil, fmt.Errorf("parsing crumb response: %w", err)
	}

	return &crumb, nil
}

// GetConfigXML implements jenkins.SystemClient.GetConfigXML
func (c *SystemClient) GetConfigXML(ctx context.Context) ([]byte, error) {
	req := jenkins.Get("config.xml").WithHeader("Accept", "application/xml")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting system config: %w", err)
	}

	return resp.Body, nil
}

// UpdateConfigXML implements jenkins.SystemClient.UpdateConfigXML
func (c *SystemClient) UpdateConfigXML(ctx context.Context, config []byte) error {
	req := jenkins.Post("config.xml").WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "updating system config")
}

// QuietDown implements jenkins.SystemClient.QuietDown
func (c *SystemClient) QuietDown(ctx context.Context) error {
	return send(ctx, c.httpClient, jenkins.Post("quietDown"), "entering quiet mode")
}

// CancelQuietDown implements jenkins.SystemClient.CancelQuietDown
func (c *SystemClient) CancelQuietDown(ctx context.Context) error {
	return send(ctx, c.httpClient, jenkins.Post("cancelQuietDown"), "cancelling quiet mode")
}

// ReloadConfiguration implements jenkins.SystemClient.ReloadConfiguration
func (c *SystemClient) ReloadConfiguration(ctx context.Context) error {
	return send(ctx, c.httpClient, jenkins.Post("reload"), "reloading configuration")
}

// SafeRestart implements jenkins.SystemClient.SafeRestart
func (c *SystemClient) SafeRestart(ctx context.Context) error {
	return send(ctx, c.httpClient, jenkins.Post("safeRestart"), "safely restarting")
}

// Restart implements jenkins.SystemClient.Restart
func (c *SystemClient) Restart(ctx context.Context) error {
	return send(ctx, c.httpClient, jenkins.Post("restart"), "restarting")
}
