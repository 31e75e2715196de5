package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"yt-qabot/internal/db"
	"yt-qabot/internal/worker"
	"yt-qabot/internal/youtube"
	"yt-qabot/pkg/tasks"
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
	seedPlaylists()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer client.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 1, // Process one task at a time to be gentle with YouTube
			Queues: map[string]int{
				"high":    2,
				"default": 1,
			},
			// Custom retry delay function for exponential backoff
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := 5 * time.Minute
				maxDelay := 24 * time.Hour

				// Exponential backoff: 5min, 10min, 20min, 40min, 80min, etc.
				for i := 0; i < n; i++ {
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
						break
					}
				}

				log.Printf("Task %s failed %d times, retrying in %v", task.Type(), n+1, delay)
				return delay
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(client, youtube.NewFetcher())

	mux.HandleFunc(tasks.TypeSyncAllPlaylists, taskHandler.HandleSyncAllPlaylistsTask)
	mux.HandleFunc(tasks.TypeSyncPlaylist, taskHandler.HandleSyncPlaylistTask)
	mux.HandleFunc(tasks.TypeFetchTranscripts, taskHandler.HandleFetchTranscriptsTask)
	mux.HandleFunc(tasks.TypeExportTranscripts, taskHandler.HandleExportTranscriptsTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}

// seedPlaylists registers the curated playlists from YOUTUBE_PLAYLISTS,
// a comma-separated list of id=name pairs. Existing rows are untouched.
func seedPlaylists() {
	raw := os.Getenv("YOUTUBE_PLAYLISTS")
	if raw == "" {
		return
	}

	runID := time.Now().UTC()
	for _, pair := range strings.Split(raw, ",") {
		id, name, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || id == "" {
			log.Printf("Skipping malformed playlist entry %q", pair)
			continue
		}
		if name == "" {
			name = id
		}

		if err := db.InsertPlaylistIfMissing(id, name, runID); err != nil {
			log.Printf("Failed to seed playlist %s: %v", id, err)
		}
	}
}
