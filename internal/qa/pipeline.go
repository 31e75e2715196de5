package qa

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
)

// DefaultCollectionName is the alias the serving collection is reachable
// under; rebuilds swap the alias, not the collection.
const DefaultCollectionName = "youtube_transcripts"

const DefaultChatModel = "gpt-3.5-turbo-16k"

// retrievalTopK is how many nearest chunks are stuffed into the prompt.
const retrievalTopK = 5

const answerTemplate = `Use the following pieces of information to answer the users question.
Include every piece of information in the answer. Do not miss anything from the given context to include in answer.
If you don't know the answer, please just say that you don't know the answer. Don't try to make up an answer.
Context:{{.context}}
question:{{.question}}
Only returns the helpful answer below and nothing else.
`

func answerPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(answerTemplate, []string{"context", "question"})
}

// Answerer answers a free-text question over the indexed transcripts.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Config collects everything the pipeline needs. It is built once by the
// serving process at startup and injected into the request handlers.
type Config struct {
	QdrantURL      string
	QdrantAPIKey   string
	CollectionName string
	OpenAIKey      string
	ChatModel      string
	Embedder       embeddings.Embedder
}

// Pipeline is the retrieval-plus-generation chain: similarity search over the
// transcript collection feeding a stuff-documents prompt at temperature 0.
type Pipeline struct {
	chain          chains.Chain
	collectionName string
}

var _ Answerer = (*Pipeline)(nil)

func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.CollectionName == "" {
		cfg.CollectionName = DefaultCollectionName
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}

	qdrantURL, err := url.Parse(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url %q: %w", cfg.QdrantURL, err)
	}

	store, err := qdrant.New(
		qdrant.WithURL(*qdrantURL),
		qdrant.WithAPIKey(cfg.QdrantAPIKey),
		qdrant.WithCollectionName(cfg.CollectionName),
		qdrant.WithEmbedder(cfg.Embedder),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIKey),
		openai.WithModel(cfg.ChatModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create language model client: %w", err)
	}

	chain := chains.NewRetrievalQA(
		chains.NewStuffDocuments(chains.NewLLMChain(llm, answerPrompt())),
		vectorstores.ToRetriever(store, retrievalTopK),
	)

	return &Pipeline{
		chain:          chain,
		collectionName: cfg.CollectionName,
	}, nil
}

// Answer retrieves the nearest chunks for the query and generates an answer
// from them. Failures propagate to the caller; there is no retry.
func (p *Pipeline) Answer(ctx context.Context, query string) (string, error) {
	log.Printf("Querying collection %q with: %s", p.collectionName, query)

	answer, err := chains.Run(ctx, p.chain, query, chains.WithTemperature(0))
	if err != nil {
		log.Printf("Error answering query: %v", err)
		return "", err
	}

	return answer, nil
}
