package models

import "time"

// Playlist is a curated YouTube playlist whose videos get ingested.
// Playlists are created once at setup time and never modified afterwards.
type Playlist struct {
	ID                 string    `db:"id"`
	Name               string    `db:"name"`
	FirstInsertedAtRun time.Time `db:"first_inserted_at_run"`
}
