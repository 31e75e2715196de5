package vectordb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateCollection(t *testing.T) {
	var gotMethod, gotPath, gotKey string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"status":"ok","result":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	err := client.CreateCollection(context.Background(), "transcripts_123", 384)
	assert.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/collections/transcripts_123", gotPath)
	assert.Equal(t, "secret", gotKey)

	vectors := gotBody["vectors"].(map[string]any)
	assert.Equal(t, float64(384), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestDeleteCollection(t *testing.T) {
	var gotMethod, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"status":"ok","result":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.DeleteCollection(context.Background(), "stale")
	assert.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/collections/stale", gotPath)
}

func TestAliasedCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/aliases", r.URL.Path)
		w.Write([]byte(`{"status":"ok","result":{"aliases":[{"alias_name":"transcripts","collection_name":"transcripts_20240101000000"}]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	name, err := client.AliasedCollection(context.Background(), "transcripts")
	assert.NoError(t, err)
	assert.Equal(t, "transcripts_20240101000000", name)

	name, err = client.AliasedCollection(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestSwapAliasWithExistingTarget(t *testing.T) {
	var actionsBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/aliases" {
			w.Write([]byte(`{"status":"ok","result":{"aliases":[{"alias_name":"transcripts","collection_name":"old"}]}}`))
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/aliases", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&actionsBody)
		w.Write([]byte(`{"status":"ok","result":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.SwapAlias(context.Background(), "transcripts", "new")
	assert.NoError(t, err)

	actions := actionsBody["actions"].([]any)
	assert.Len(t, actions, 2)

	first := actions[0].(map[string]any)
	assert.Contains(t, first, "delete_alias")

	second := actions[1].(map[string]any)
	create := second["create_alias"].(map[string]any)
	assert.Equal(t, "transcripts", create["alias_name"])
	assert.Equal(t, "new", create["collection_name"])
}

func TestSwapAliasWithoutExistingTarget(t *testing.T) {
	var actionsBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/aliases" {
			w.Write([]byte(`{"status":"ok","result":{"aliases":[]}}`))
			return
		}
		json.NewDecoder(r.Body).Decode(&actionsBody)
		w.Write([]byte(`{"status":"ok","result":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.SwapAlias(context.Background(), "transcripts", "new")
	assert.NoError(t, err)

	actions := actionsBody["actions"].([]any)
	assert.Len(t, actions, 1)
	assert.Contains(t, actions[0].(map[string]any), "create_alias")
}

func TestErrorIncludesResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":{"error":"collection already exists"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.CreateCollection(context.Background(), "dup", 384)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "collection already exists")
}
