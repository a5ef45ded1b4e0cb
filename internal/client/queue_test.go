package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/queue/api/json", r.URL.Path)
		assert.Equal(t, "items[id,why]", r.URL.Query().Get("tree"))

		_, _ = w.Write([]byte(`{"items":[{"id":123,"why":"Waiting for next available executor"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Queue().List(context.Background(), "items[id,why]")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":123`)
}

func TestQueueClient_Item(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/queue/item/123/api/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":123,"blocked":false}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Queue().Item(context.Background(), 123, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":123,"blocked":false}`, string(raw))
}

func TestQueueClient_Cancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/queue/cancelItem", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "123", r.URL.Query().Get("id"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	require.NoError(t, client.Queue().Cancel(context.Background(), 123))
}
