package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeSyncAllPlaylists  = "playlists:sync_all"
	TypeSyncPlaylist      = "playlist:sync"
	TypeFetchTranscripts  = "video:fetch_transcripts"
	TypeExportTranscripts = "transcripts:export"
)

// SyncPlaylistTaskPayload carries the run timestamp so every row written for
// one batch run is tagged identically.
type SyncPlaylistTaskPayload struct {
	PlaylistID string
	RunID      time.Time
}

func NewSyncPlaylistTask(playlistID string, runID time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncPlaylistTaskPayload{PlaylistID: playlistID, RunID: runID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSyncPlaylist, payload), nil
}

type FetchTranscriptsTaskPayload struct {
	VideoID string
	RunID   time.Time
}

func NewFetchTranscriptsTask(videoID string, runID time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(FetchTranscriptsTaskPayload{VideoID: videoID, RunID: runID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeFetchTranscripts, payload), nil
}

func NewSyncAllPlaylistsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeSyncAllPlaylists, nil), nil
}

func NewExportTranscriptsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeExportTranscripts, nil), nil
}
