package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// ViewsClient implements jenkins.ViewsClient
type ViewsClient struct {
	httpClient *http.Client
}

// NewViewsClient creates a new views client
func NewViewsClient(httpClient *http.Client) *ViewsClient {
	return &ViewsClient{httpClient: httpClient}
}

// List implements jenkins.ViewsClient.List
func (c *ViewsClient) List(ctx context.Context) (*jenkins.ViewList, error) {
	req := jenkins.Get("api", "json").WithQuery("tree", "views[name,url]")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}

	var list jenkins.ViewList
	if err := resp.JSON(&list); err != nil {
		return nil, fmt.Errorf("parsing view list response: %w", err)
	}

	return &list, nil
}

// Get implements jenkins.ViewsClient.Get
func (c *ViewsClient) Get(ctx context.Context, name string, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("view", name, "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "getting view")
}

// CreateFromXML implements jenkins.ViewsClient.CreateFromXML
func (c *ViewsClient) CreateFromXML(ctx context.Context, name string, config []byte) error {
	req := jenkins.Post("createView").
		WithQuery("name", name).
		WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "creating view")
}

// Delete implements jenkins.ViewsClient.Delete
func (c *ViewsClient) Delete(ctx context.Context, name string) error {
	return send(ctx, c.httpClient, jenkins.Post("view", name, "doDelete"), "deleting view")
}

// Rename implements jenkins.ViewsClient.Rename
func (c *ViewsClient) Rename(ctx context.Context, name, newName string) error {
	req := jenkins.Post("view", name, "doRename").WithQuery("newName", newName)

	return send(ctx, c.httpClient, req, "renaming view")
}

// AddJob implements jenkins.ViewsClient.AddJob
func (c *ViewsClient) AddJob(ctx context.Context, view, job string) error {
	req := jenkins.Post("view", view, "addJobToView").WithQuery("name", job)

	return send(ctx, c.httpClient, req, "adding job to view")
}

// RemoveJob implements jenkins.ViewsClient.RemoveJob
func (c *ViewsClient) RemoveJob(ctx context.Context, view, job string) error {
	req := jenkins.Post("view", view, "removeJobFromView").WithQuery("name", job)

	return send(ctx, c.httpClient, req, "removing job from view")
}

// GetConfigXML implements jenkins.ViewsClient.GetConfigXML
func (c *ViewsClient) GetConfigXML(ctx context.Context, name string) ([]byte, error) {
	req := jenkins.Get("view", name, "config.xml").WithHeader("Accept", "application/xml")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting view config: %w", err)
	}

	return resp.Body, nil
}

// UpdateConfigXML implements jenkins.ViewsClient.UpdateConfigXML
func (c *ViewsClient) UpdateConfigXML(ctx context.Context, name string, config []byte) error {
	req := jenkins.Post("view", name, "config.xml").WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "updating view config")
}
