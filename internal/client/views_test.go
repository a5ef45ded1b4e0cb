package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewsClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/json", r.URL.Path)
		assert.Equal(t, "views[name,url]", r.URL.Query().Get("tree"))

		_, _ = w.Write([]byte(`{"views":[{"name":"all","url":"http://ci/"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	list, err := client.Views().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Views, 1)
	assert.Equal(t, "all", list.Views[0].Name)
}

func TestViewsClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/view/pipelines/api/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"pipelines"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Views().Get(context.Background(), "pipelines", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"pipelines"}`, string(raw))
}

func TestViewsClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/createView", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "pipelines", r.URL.Query().Get("name"))
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	require.NoError(t, client.Views().CreateFromXML(context.Background(), "pipelines", []byte("<listView/>")))
}

func TestViewsClient_JobMembership(t *testing.T) {
	var gotPath, gotJob string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		gotPath = r.URL.Path
		gotJob = r.URL.Query().Get("name")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	require.NoError(t, client.Views().AddJob(ctx, "pipelines", "deploy"))
	assert.Equal(t, "/view/pipelines/addJobToView", gotPath)
	assert.Equal(t, "deploy", gotJob)

	require.NoError(t, client.Views().RemoveJob(ctx, "pipelines", "deploy"))
	assert.Equal(t, "/view/pipelines/removeJobFromView", gotPath)
}

func TestViewsClient_DeleteAndRename(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		if r.URL.Path == "/view/old/doRename" {
			assert.Equal(t, "new", r.URL.Query().Get("newName"))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	require.NoError(t, client.Views().Rename(ctx, "old", "new"))
	assert.Equal(t, "/view/old/doRename", gotPath)

	require.NoError(t, client.Views().Delete(ctx, "old"))
	assert.Equal(t, "/view/old/doDelete", gotPath)
}
