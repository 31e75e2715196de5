package models

import "time"

// TranscriptLine is one caption line of a video's subtitle track. Start and
// Duration are in seconds.
type TranscriptLine struct {
	ID                 int64     `db:"id"`
	VideoID            string    `db:"video_id"`
	Text               string    `db:"text"`
	Start              float64   `db:"start"`
	Duration           float64   `db:"duration"`
	FirstInsertedAtRun time.Time `db:"first_inserted_at_run"`
}
