package db

import (
	"log"
	"time"

	"yt-qabot/internal/models"
)

// InsertPlaylistIfMissing registers a curated playlist. Existing rows are
// left untouched so re-running setup is safe.
func InsertPlaylistIfMissing(id string, name string, runID time.Time) error {
	query := `
		INSERT INTO youtube_playlists (id, name, first_inserted_at_run)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := DB.Exec(query, id, name, runID)
	if err != nil {
		log.Printf("Error inserting playlist %s: %v", id, err)
		return err
	}
	return nil
}

func GetAllPlaylists() ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := DB.Select(&playlists, "SELECT * FROM youtube_playlists ORDER BY first_inserted_at_run")
	if err != nil {
		log.Printf("Error getting playlists: %v", err)
		return nil, err
	}
	return playlists, nil
}
