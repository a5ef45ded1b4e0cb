package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/alice/api/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"alice","fullName":"Alice"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Users().Get(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"alice","fullName":"Alice"}`, string(raw))
}

func TestUsersClient_WhoAmI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/whoAmI/api/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"alice","anonymous":false,"authorities":["authenticated"]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	who, err := client.Users().WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", who.Name)
	assert.False(t, who.Anonymous)
	assert.Equal(t, []string{"authenticated"}, who.Authorities)
}

func TestUsersClient_People(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Users().People(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "/people/api/json", gotPath)

	_, err = client.Users().PeopleAsync(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "/asynchPeople/api/json", gotPath)
}

func TestUsersClient_ConfigXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/alice/config.xml", r.URL.Path)

		if r.Method == "POST" {
			assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))

			return
		}

		_, _ = w.Write([]byte("<user/>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	got, err := client.Users().GetConfigXML(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("<user/>"), got)

	require.NoError(t, client.Users().UpdateConfigXML(ctx, "alice", []byte("<user/>")))
}
