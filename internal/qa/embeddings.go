package qa

import (
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultEmbeddingsModel is all-MiniLM-L6-v2 served by any OpenAI-compatible
// embeddings endpoint (text-embeddings-inference, ollama, and similar).
const DefaultEmbeddingsModel = "sentence-transformers/all-MiniLM-L6-v2"

// LoadEmbeddings builds the text-to-vector client shared by the indexing and
// retrieval paths. baseURL selects the serving endpoint; which device the
// model runs on is that endpoint's concern.
func LoadEmbeddings(baseURL string, model string, apiKey string) (embeddings.Embedder, error) {
	if model == "" {
		model = DefaultEmbeddingsModel
	}
	if apiKey == "" {
		// Local OpenAI-compatible services don't check the token, but the
		// client requires one.
		apiKey = "none"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
}
