package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// UsersClient implements jenkins.UsersClient
type UsersClient struct {
	httpClient *http.Client
}

// NewUsersClient creates a new users client
func NewUsersClient(httpClient *http.Client) *UsersClient {
	return &UsersClient{httpClient: httpClient}
}

// Get implements jenkins.UsersClient.Get
func (c *UsersClient) Get(ctx context.Context, id string, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("user", id, "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "getting user")
}

// WhoAmI implements jenkins.UsersClient.WhoAmI
func (c *UsersClient) WhoAmI(ctx context.Context) (*jenkins.WhoAmI, error) {
	resp, err := c.httpClient.Do(ctx, jenkins.Get("whoAmI", "api", "json"))
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	var who jenkins.WhoAmI
	if err := resp.JSON(&who); err != nil {
		return nil, fmt.Errorf("parsing whoAmI response: %w", err)
	}

	return &who, nil
}

// GetConfigXML implements jenkins.UsersClient.GetConfigXML
func (c *UsersClient) GetConfigXML(ctx context.Context, id string) ([]byte, error) {
	req := jenkins.Get("user", id, "config.xml").WithHeader("Accept", "application/xml")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting user config: %w", err)
	}

	return resp.Body, nil
}

// UpdateConfigXML implements jenkins.UsersClient.UpdateConfigXML
func (c *UsersClient) UpdateConfigXML(ctx context.Context, id string, config []byte) error {
	req := jenkins.Post("user", id, "config.xml").WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "updating user config")
}

// People implements jenkins.UsersClient.People
func (c *UsersClient) People(ctx context.Context, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("people", "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "listing people")
}

// PeopleAsync implements jenkins.UsersClient.PeopleAsync
func (c *UsersClient) PeopleAsync(ctx context.Context, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("asynchPeople", "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "listing people asynchronously")
}
