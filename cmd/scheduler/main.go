package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"yt-qabot/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr},
		&asynq.SchedulerOpts{},
	)

	syncTask, err := tasks.NewSyncAllPlaylistsTask()
	if err != nil {
		log.Fatalf("could not create sync task: %v", err)
	}
	if _, err := scheduler.Register("@every 12h", syncTask); err != nil {
		log.Fatalf("could not register sync task: %v", err)
	}

	exportTask, err := tasks.NewExportTranscriptsTask()
	if err != nil {
		log.Fatalf("could not create export task: %v", err)
	}
	if _, err := scheduler.Register("@every 24h", exportTask); err != nil {
		log.Fatalf("could not register export task: %v", err)
	}

	log.Printf("Scheduler starting (commit: %s)", CommitSHA)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("could not run scheduler: %v", err)
	}
}
