package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// ComputersClient implements jenkins.ComputersClient
type ComputersClient struct {
	httpClient *http.Client
}

// NewComputersClient creates a new computers client
func NewComputersClient(httpClient *http.Client) *ComputersClient {
	return &ComputersClient{httpClient: httpClient}
}

// List implements jenkins.ComputersClient.List
func (c *ComputersClient) List(ctx context.Context, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("computer", "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "listing computers")
}

// ExecutorsInfo implements jenkins.ComputersClient.ExecutorsInfo
func (c *ComputersClient) ExecutorsInfo(ctx context.Context) (*jenkins.ExecutorsInfo, error) {
	req := jenkins.Get("computer", "api", "json").
		WithQuery("tree", "totalExecutors,busyExecutors")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting executors info: %w", err)
	}

	var info jenkins.ExecutorsInfo
	if err := resp.JSON(&info); err != nil {
		return nil, fmt.Errorf("parsing executors info response: %w", err)
	}

	return &info, nil
}

// Get implements jenkins.ComputersClient.Get
func (c *ComputersClient) Get(ctx context.Context, name string, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("computer", name, "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "getting computer")
}

// ToggleOffline implements jenkins.ComputersClient.ToggleOffline
func (c *ComputersClient) ToggleOffline(ctx context.Context, name, reason string) error {
	req := jenkins.Post("computer", name, "toggleOffline")
	if reason != "" {
		req = req.WithQuery("offlineMessage", reason)
	}

	return send(ctx, c.httpClient, req, "toggling computer offline")
}

// Connect implements jenkins.ComputersClient.Connect
func (c *ComputersClient) Connect(ctx context.Context, name string) error {
	return send(ctx, c.httpClient, jenkins.Post("computer", name, "connect"), "connecting computer")
}

// Disconnect implements jenkins.ComputersClient.Disconnect
func (c *ComputersClient) Disconnect(ctx context.Context, name string) error {
	return send(ctx, c.httpClient, jenkins.Post("computer", name, "disconnect"), "disconnecting computer")
}

// LaunchAgent implements jenkins.ComputersClient.LaunchAgent
func (c *ComputersClient) LaunchAgent(ctx context.Context, name string) error {
	return send(ctx, c.httpClient, jenkins.Post("computer", name, "launchSlaveAgent"), "launching agent")
}

// Delete implements jenkins.ComputersClient.Delete
func (c *ComputersClient) Delete(ctx context.Context, name string) error {
	return send(ctx, c.httpClient, jenkins.Post("computer", name, "doDelete"), "deleting computer")
}

// CreateFromXML implements jenkins.ComputersClient.CreateFromXML
func (c *ComputersClient) CreateFromXML(ctx context.Context, name string, config []byte) error {
	req := jenkins.Post("computer", "doCreateItem").
		WithQuery("name", name).
		WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "creating computer")
}

// Copy implements jenkins.ComputersClient.Copy
func (c *ComputersClient) Copy(ctx context.Context, from, to string) error {
	req := jenkins.Post("computer", "doCreateItem").
		WithQuery("name", to).
		WithQuery("mode", "copy").
		WithQuery("from", from)

	return send(ctx, c.httpClient, req, "copying computer")
}

// GetConfigXML implements jenkins.ComputersClient.GetConfigXML
func (c *ComputersClient) GetConfigXML(ctx context.Context, name string) ([]byte, error) {
	req := jenkins.Get("computer", name, "config.xml").WithHeader("Accept", "application/xml")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting computer config: %w", err)
	}

	return resp.Body, nil
}

// UpdateConfigXML implements jenkins.ComputersClient.UpdateConfigXML
func (c *ComputersClient) UpdateConfigXML(ctx context.Context, name string, config []byte) error {
	req := jenkins.Post("computer", name, "config.xml").WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "updating computer config")
}
