package client

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// QueueClient implements jenkins.QueueClient
type QueueClient struct {
	httpClient *http.Client
}

// NewQueueClient creates a new queue client
func NewQueueClient(httpClient *http.Client) *QueueClient {
	return &QueueClient{httpClient: httpClient}
}

// List implements jenkins.QueueClient.List
func (c *QueueClient) List(ctx context.Context, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("queue", "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "listing queue")
}

// Item implements jenkins.QueueClient.Item
func (c *QueueClient) Item(ctx context.Context, id int64, tree string) (json.RawMessage, error) {
	req := withTree(jenkins.Get("queue", "item", strconv.FormatInt(id, 10), "api", "json"), tree)

	return getJSON(ctx, c.httpClient, req, "getting queue item")
}

// Cancel implements jenkins.QueueClient.Cancel
func (c *QueueClient) Cancel(ctx context.Context, id int64) error {
	req := jenkins.Post("queue", "cancelItem").WithQuery("id", strconv.FormatInt(id, 10))

	return send(ctx, c.httpClient, req, "cancelling queue item")
}
