package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"yt-qabot/internal/db"
	"yt-qabot/internal/models"
	"yt-qabot/internal/pipeline"
	"yt-qabot/pkg/tasks"

	"github.com/hibiken/asynq"
)

// TranscriptFetcher is the YouTube access the worker needs. Implemented by
// youtube.Fetcher; mocked in tests.
type TranscriptFetcher interface {
	PlaylistVideos(playlistID string) ([]string, error)
	FetchTranscript(videoID string) ([]models.TranscriptLine, error)
}

type TaskHandler struct {
	asynqClient tasks.TaskEnqueuer
	fetcher     TranscriptFetcher
}

func NewTaskHandler(client tasks.TaskEnqueuer, fetcher TranscriptFetcher) *TaskHandler {
	return &TaskHandler{asynqClient: client, fetcher: fetcher}
}

// HandleSyncAllPlaylistsTask fans one sync task out per stored playlist and
// re-enqueues a fetch for every video whose last attempt did not succeed.
// Failed videos retry unconditionally on every run this way. The run
// timestamp minted here tags every row the whole batch writes.
func (h *TaskHandler) HandleSyncAllPlaylistsTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Syncing all playlists...")

	playlists, err := db.GetAllPlaylists()
	if err != nil {
		return fmt.Errorf("failed to get playlists: %w", err)
	}

	runID := time.Now().UTC()
	for _, playlist := range playlists {
		task, err := tasks.NewSyncPlaylistTask(playlist.ID, runID)
		if err != nil {
			log.Printf("failed to create sync task for playlist %s: %v", playlist.ID, err)
			continue
		}

		_, err = h.asynqClient.Enqueue(task)
		if err != nil {
			log.Printf("failed to enqueue sync task for playlist %s: %v", playlist.ID, err)
			continue
		}
	}

	retries, err := db.GetVideosNeedingTranscripts()
	if err != nil {
		return fmt.Errorf("failed to get videos needing transcripts: %w", err)
	}

	for _, video := range retries {
		task, err := tasks.NewFetchTranscriptsTask(video.ID, runID)
		if err != nil {
			log.Printf("failed to create fetch task for video %s: %v", video.ID, err)
			continue
		}

		_, err = h.asynqClient.Enqueue(task)
		if err != nil {
			log.Printf("failed to enqueue fetch task for video %s: %v", video.ID, err)
			continue
		}
	}

	log.Printf("Finished scheduling sync for %d playlists and %d transcript retries.", len(playlists), len(retries))
	return nil
}

// HandleSyncPlaylistTask discovers the playlist's videos, upserts them, and
// enqueues a transcript fetch for every pending video. Already-fetched videos
// are skipped so a batch run never re-fetches; failed ones are left to the
// sync-all retry sweep.
func (h *TaskHandler) HandleSyncPlaylistTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.SyncPlaylistTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	videoIDs, err := h.fetcher.PlaylistVideos(p.PlaylistID)
	if err != nil {
		return fmt.Errorf("failed to list videos for playlist %s: %w", p.PlaylistID, err)
	}

	for _, videoID := range videoIDs {
		video, err := db.CreateOrGetVideo(videoID, p.PlaylistID, p.RunID)
		if err != nil {
			log.Printf("failed to upsert video %s: %v", videoID, err)
			continue
		}

		if video.TranscriptStatus != db.TranscriptStatusPending {
			continue
		}

		task, err := tasks.NewFetchTranscriptsTask(videoID, p.RunID)
		if err != nil {
			log.Printf("failed to create fetch task for video %s: %v", videoID, err)
			continue
		}

		_, err = h.asynqClient.Enqueue(task)
		if err != nil {
			log.Printf("failed to enqueue fetch task for video %s: %v", videoID, err)
			continue
		}
	}

	log.Printf("Playlist %s synced: %d videos known", p.PlaylistID, len(videoIDs))
	return nil
}

// HandleFetchTranscriptsTask is the per-video unit of failure: fetch the
// subtitle track and replace whatever lines the store already holds. A store
// error leaves the video un-stamped so the next run picks it up again.
func (h *TaskHandler) HandleFetchTranscriptsTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.FetchTranscriptsTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	lines, err := h.fetcher.FetchTranscript(p.VideoID)
	if err != nil {
		return fmt.Errorf("failed to fetch transcript for %s: %w", p.VideoID, err)
	}

	if len(lines) == 0 {
		log.Printf("Video %s has no transcript, recording failed attempt", p.VideoID)
		if err := db.MarkTranscriptFetchFailed(p.VideoID, p.RunID); err != nil {
			return fmt.Errorf("failed to record fetch failure for %s: %w", p.VideoID, err)
		}
		return nil
	}

	if err := db.ReplaceTranscriptLines(p.VideoID, lines, p.RunID); err != nil {
		log.Printf("Storing transcript for %s failed, will retry next run: %v", p.VideoID, err)
		return fmt.Errorf("failed to store transcript for %s: %w", p.VideoID, err)
	}

	log.Printf("Stored %d transcript lines for %s", len(lines), p.VideoID)
	return nil
}

// HandleExportTranscriptsTask dumps one text file per transcribed video under
// the data volume directory.
func (h *TaskHandler) HandleExportTranscriptsTask(ctx context.Context, t *asynq.Task) error {
	dir := os.Getenv("DATA_VOLUME_DIR")
	if dir == "" {
		dir = "data"
	}

	count, err := pipeline.ExportTranscripts(dir)
	if err != nil {
		return fmt.Errorf("failed to export transcripts: %w", err)
	}

	log.Printf("Exported %d transcripts to %s", count, dir)
	return nil
}
