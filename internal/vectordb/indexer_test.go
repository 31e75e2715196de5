package vectordb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/schema"
)

// fakeEmbedder returns fixed-dimension vectors without calling any model.
type fakeEmbedder struct {
	queries []string
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3, 0.4}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	return []float32{0.1, 0.2, 0.3, 0.4}, nil
}

func newQdrantStub(t *testing.T, existingAlias string) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)

		if r.Method == http.MethodGet && r.URL.Path == "/aliases" {
			if existingAlias == "" {
				w.Write([]byte(`{"status":"ok","result":{"aliases":[]}}`))
				return
			}
			w.Write([]byte(`{"status":"ok","result":{"aliases":[{"alias_name":"transcripts","collection_name":"` + existingAlias + `"}]}}`))
			return
		}
		w.Write([]byte(`{"status":"ok","result":{}}`))
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestRebuildCreatesSwapsAndDropsPrevious(t *testing.T) {
	server, calls := newQdrantStub(t, "transcripts_old")

	embedder := &fakeEmbedder{}
	client := NewClient(server.URL, "")
	indexer, err := NewIndexer(client, embedder, server.URL, "", "transcripts")
	assert.NoError(t, err)

	chunks := []schema.Document{
		{PageContent: "first chunk", Metadata: map[string]any{"video_id": "v1"}},
		{PageContent: "second chunk", Metadata: map[string]any{"video_id": "v1"}},
	}

	count, err := indexer.Rebuild(context.Background(), chunks)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	// The probe uses real chunk text, not a placeholder.
	assert.Equal(t, []string{"first chunk"}, embedder.queries)

	var created, upserted, swapped, dropped int
	for i, call := range *calls {
		switch {
		case strings.HasPrefix(call, "PUT /collections/transcripts_") && !strings.Contains(call, "/points"):
			created = i
		case strings.Contains(call, "/points"):
			upserted = i
		case call == "POST /collections/aliases":
			swapped = i
		case call == "DELETE /collections/transcripts_old":
			dropped = i
		}
	}

	assert.Greater(t, upserted, created, "chunks must go into the collection after it is created")
	assert.Greater(t, swapped, upserted, "the alias must move only once the collection is populated")
	assert.Greater(t, dropped, swapped, "the previous collection is dropped after the swap")
}

func TestRebuildWithoutChunksStillSwaps(t *testing.T) {
	server, calls := newQdrantStub(t, "")

	embedder := &fakeEmbedder{}
	client := NewClient(server.URL, "")
	indexer, err := NewIndexer(client, embedder, server.URL, "", "transcripts")
	assert.NoError(t, err)

	count, err := indexer.Rebuild(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	var created, upserted, swapped bool
	for _, call := range *calls {
		switch {
		case strings.HasPrefix(call, "PUT /collections/transcripts_") && !strings.Contains(call, "/points"):
			created = true
		case strings.Contains(call, "/points"):
			upserted = true
		case call == "POST /collections/aliases":
			swapped = true
		}
	}

	assert.True(t, created, "an empty collection is still created")
	assert.False(t, upserted, "nothing is written for an empty corpus")
	assert.True(t, swapped, "the alias still moves to the empty collection")
}

func TestNewIndexerRejectsBadURL(t *testing.T) {
	client := NewClient("http://localhost:6333", "")
	_, err := NewIndexer(client, &fakeEmbedder{}, "://not-a-url", "", "transcripts")
	assert.Error(t, err)
}
