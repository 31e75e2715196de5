package models

import "time"

// Video is a YouTube video discovered while scanning a playlist. A video can
// belong to several playlists through the playlist_videos join table.
type Video struct {
	ID                       string     `db:"id"`
	FirstInsertedAtRun       time.Time  `db:"first_inserted_at_run"`
	TranscriptStatus         string     `db:"transcript_status"`
	FetchedTranscriptsAtRun  *time.Time `db:"fetched_transcripts_at_run"`
	LastFailedTranscriptsRun *time.Time `db:"last_failed_transcripts_run"`
}
