package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"yt-qabot/internal/db"
	"yt-qabot/internal/handlers"
	"yt-qabot/internal/middleware"
	"yt-qabot/internal/qa"
	"yt-qabot/internal/vectordb"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	db.InitDB()
	if err := db.SetupSchema(); err != nil {
		log.Fatalf("Failed to set up schema: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	qdrantURL := os.Getenv("QDRANT_URL")
	if qdrantURL == "" {
		qdrantURL = "http://localhost:6333"
	}
	qdrantAPIKey := os.Getenv("QDRANT_API_KEY")

	embedder, err := qa.LoadEmbeddings(
		os.Getenv("EMBEDDINGS_BASE_URL"),
		os.Getenv("EMBEDDINGS_MODEL"),
		os.Getenv("EMBEDDINGS_API_KEY"),
	)
	if err != nil {
		log.Fatalf("Failed to load embeddings: %v", err)
	}

	// Built once here and handed to the handlers; the embedding model and
	// retriever configuration change only with a restart.
	pipeline, err := qa.NewPipeline(qa.Config{
		QdrantURL:      qdrantURL,
		QdrantAPIKey:   qdrantAPIKey,
		CollectionName: qa.DefaultCollectionName,
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ChatModel:      os.Getenv("OPENAI_CHAT_MODEL"),
		Embedder:       embedder,
	})
	if err != nil {
		log.Fatalf("Failed to build QA pipeline: %v", err)
	}

	indexer, err := vectordb.NewIndexer(
		vectordb.NewClient(qdrantURL, qdrantAPIKey),
		embedder,
		qdrantURL,
		qdrantAPIKey,
		qa.DefaultCollectionName,
	)
	if err != nil {
		log.Fatalf("Failed to build indexer: %v", err)
	}

	h := handlers.New(pipeline, indexer)
	go h.StartTelegramBot()

	qaLimiter := middleware.NewRateLimiterMiddleware(rate.Every(time.Second), 5)

	r := mux.NewRouter()
	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/api/crate_db", h.CreateDatabase).Methods(http.MethodGet)
	r.Handle("/api/qa", qaLimiter.Middleware(http.HandlerFunc(h.QA))).Methods(http.MethodPost)

	log.Printf("Starting server on :%s (commit: %s)", port, CommitSHA)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
