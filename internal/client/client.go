// Package client implements the jenkins.Client interface on top of the
// transport pipeline in internal/http.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// Client implements the jenkins.Client interface.
type Client struct {
	httpClient *http.Client

	// Resource clients
	jobs      jenkins.JobsClient
	queue     jenkins.QueueClient
	computers jenkins.ComputersClient
	views     jenkins.ViewsClient
	users     jenkins.UsersClient
	system    jenkins.SystemClient
}

// New creates a client around an already-configured transport.
func New(httpClient *http.Client) *Client {
	c := &Client{httpClient: httpClient}
	c.initializeServices()

	return c
}

func (c *Client) initializeServices() {
	c.jobs = NewJobsClient(c.httpClient)
	c.queue = NewQueueClient(c.httpClient)
	c.computers = NewComputersClient(c.httpClient)
	c.views = NewViewsClient(c.httpClient)
	c.users = NewUsersClient(c.httpClient)
	c.system = NewSystemClient(c.httpClient)
}

// Jobs returns the jobs client.
func (c *Client) Jobs() jenkins.JobsClient {
	return c.jobs
}

// Queue returns the queue client.
func (c *Client) Queue() jenkins.QueueClient {
	return c.queue
}

// Computers returns the computers client.
func (c *Client) Computers() jenkins.ComputersClient {
	return c.computers
}

// Views returns the views client.
func (c *Client) Views() jenkins.ViewsClient {
	return c.views
}

// Users returns the users client.
func (c *Client) Users() jenkins.UsersClient {
	return c.users
}

// System returns the system client.
func (c *Client) System() jenkins.SystemClient {
	return c.system
}

// Raw implements jenkins.Client.Raw.
func (c *Client) Raw(ctx context.Context, req *jenkins.Request) (*jenkins.Response, error) {
	return c.httpClient.Do(ctx, req)
}

// getJSON executes req and returns the raw JSON body. Jenkins object
// payloads vary wildly with installed plugins, so most read endpoints hand
// back json.RawMessage and leave field selection to the caller's tree
// expression.
func getJSON(ctx context.Context, httpClient *http.Client, req *jenkins.Request, op string) (json.RawMessage, error) {
	resp, err := httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return json.RawMessage(resp.Body), nil
}

// send executes a request whose response body is irrelevant.
func send(ctx context.Context, httpClient *http.Client, req *jenkins.Request, op string) error {
	_, err := httpClient.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// withTree appends a tree filter when one was given.
func withTree(req *jenkins.Request, tree string) *jenkins.Request {
	if tree != "" {
		req = req.WithQuery("tree", tree)
	}

	return req
}

// parseQueueItemID extracts the queue item identifier from a Location
// header like https://host/queue/item/123/.
func parseQueueItemID(location string) string {
	segments := strings.Split(location, "/")

	for i, segment := range segments {
		if segment == "item" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1]
		}
	}

	return ""
}

// triggeredBuild builds the trigger result from the response headers.
func triggeredBuild(resp *jenkins.Response) *jenkins.TriggeredBuild {
	location := resp.Headers.Get("Location")

	return &jenkins.TriggeredBuild{
		QueueItemID: parseQueueItemID(location),
		Location:    location,
	}
}
