package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/schema"

	"yt-qabot/internal/pipeline"
	"yt-qabot/internal/qa"
)

// IndexBuilder rebuilds the vector collection from freshly assembled chunks.
// Implemented by vectordb.Indexer; stubbed in tests.
type IndexBuilder interface {
	Rebuild(ctx context.Context, chunks []schema.Document) (int, error)
}

// Handlers serves the HTTP API and the Telegram bot. The QA pipeline and the
// index builder are constructed once at startup and injected here, so there
// is no lazily-built global state behind request handling.
type Handlers struct {
	answerer qa.Answerer
	indexer  IndexBuilder
}

func New(answerer qa.Answerer, indexer IndexBuilder) *Handlers {
	return &Handlers{
		answerer: answerer,
		indexer:  indexer,
	}
}

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Server is up and running!"})
}

// CreateDatabase runs the whole load, clean, chunk, embed, index pipeline
// against the transcript store and rebuilds the serving collection.
func (h *Handlers) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	documents, err := pipeline.LoadDocumentData()
	if err != nil {
		writeError(w, err)
		return
	}

	chunks, err := pipeline.GenerateTextChunks(pipeline.CleanData(documents), pipeline.DefaultChunkSize, pipeline.DefaultChunkOverlap)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.indexer.Rebuild(r.Context(), chunks)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"result": fmt.Sprintf("The vector database is created with the given data (%d chunks)", count),
	})
}

// QA answers a question posted as {"query": "..."}.
func (h *Handlers) QA(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(input.Query) == "" {
		writeError(w, fmt.Errorf("query is required"))
		return
	}

	answer, err := h.answerer.Answer(r.Context(), input.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"result": answer,
	})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"status":  "error",
		"message": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
