package vectordb

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
)

// Indexer rebuilds the serving collection without a read-visible gap. Chunks
// are embedded into a fresh, run-stamped collection which is then alias-
// swapped into place; readers bound to the alias never observe a half-built
// collection.
type Indexer struct {
	client    *Client
	embedder  embeddings.Embedder
	qdrantURL url.URL
	apiKey    string
	alias     string
}

func NewIndexer(client *Client, embedder embeddings.Embedder, qdrantURL string, apiKey string, alias string) (*Indexer, error) {
	parsed, err := url.Parse(qdrantURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url %q: %w", qdrantURL, err)
	}

	return &Indexer{
		client:    client,
		embedder:  embedder,
		qdrantURL: *parsed,
		apiKey:    apiKey,
		alias:     alias,
	}, nil
}

// Rebuild embeds every chunk into a new collection and switches the serving
// alias over to it. The previous collection is dropped afterwards. Any store
// or embedding failure is logged and returned; nothing is swallowed.
func (ix *Indexer) Rebuild(ctx context.Context, chunks []schema.Document) (int, error) {
	log.Printf("Index rebuild started: %d chunks into alias %q", len(chunks), ix.alias)

	probeText := "dimension probe"
	if len(chunks) > 0 {
		probeText = chunks[0].PageContent
	}
	probe, err := ix.embedder.EmbedQuery(ctx, probeText)
	if err != nil {
		log.Printf("Error probing embedding dimension: %v", err)
		return 0, fmt.Errorf("failed to probe embedding dimension: %w", err)
	}

	staging := fmt.Sprintf("%s_%s", ix.alias, time.Now().UTC().Format("20060102150405"))
	if err := ix.client.CreateCollection(ctx, staging, len(probe)); err != nil {
		log.Printf("Error creating collection %s: %v", staging, err)
		return 0, fmt.Errorf("failed to create collection %s: %w", staging, err)
	}

	if len(chunks) > 0 {
		store, err := qdrant.New(
			qdrant.WithURL(ix.qdrantURL),
			qdrant.WithAPIKey(ix.apiKey),
			qdrant.WithCollectionName(staging),
			qdrant.WithEmbedder(ix.embedder),
		)
		if err != nil {
			ix.dropCollection(ctx, staging)
			return 0, fmt.Errorf("failed to open vector store for %s: %w", staging, err)
		}

		if _, err := store.AddDocuments(ctx, chunks); err != nil {
			log.Printf("Error writing chunks to %s: %v", staging, err)
			ix.dropCollection(ctx, staging)
			return 0, fmt.Errorf("failed to write chunks to %s: %w", staging, err)
		}
	}

	previous, err := ix.client.AliasedCollection(ctx, ix.alias)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve alias %s: %w", ix.alias, err)
	}

	if err := ix.client.SwapAlias(ctx, ix.alias, staging); err != nil {
		log.Printf("Error swapping alias %s to %s: %v", ix.alias, staging, err)
		return 0, fmt.Errorf("failed to swap alias %s to %s: %w", ix.alias, staging, err)
	}

	if previous != "" && previous != staging {
		if err := ix.client.DeleteCollection(ctx, previous); err != nil {
			// The alias already moved, so the stale collection only wastes space.
			log.Printf("Warning: failed to drop previous collection %s: %v", previous, err)
		}
	}

	log.Printf("Index rebuild finished: alias %q now serves %q", ix.alias, staging)
	return len(chunks), nil
}

func (ix *Indexer) dropCollection(ctx context.Context, name string) {
	if err := ix.client.DeleteCollection(ctx, name); err != nil {
		log.Printf("Warning: failed to drop collection %s after error: %v", name, err)
	}
}
