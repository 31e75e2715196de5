package db

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // The database driver
)

// DB is the global database connection.
var DB *sqlx.DB

// InitDB initializes the database connection.
func InitDB() {
	var err error
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	DB, err = sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Database connection established")
}

// SetupSchema creates the transcript store tables if they don't exist yet.
func SetupSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS youtube_playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			first_inserted_at_run TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS youtube_videos (
			id TEXT PRIMARY KEY,
			first_inserted_at_run TIMESTAMPTZ NOT NULL,
			transcript_status TEXT NOT NULL DEFAULT 'PENDING',
			fetched_transcripts_at_run TIMESTAMPTZ,
			last_failed_transcripts_run TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS playlist_videos (
			playlist_id TEXT NOT NULL REFERENCES youtube_playlists(id),
			video_id TEXT NOT NULL REFERENCES youtube_videos(id),
			first_inserted_at_run TIMESTAMPTZ NOT NULL,
			UNIQUE (playlist_id, video_id)
		);

		CREATE TABLE IF NOT EXISTS youtube_transcript_lines (
			id BIGSERIAL PRIMARY KEY,
			video_id TEXT NOT NULL REFERENCES youtube_videos(id),
			text TEXT NOT NULL,
			start DOUBLE PRECISION NOT NULL,
			duration DOUBLE PRECISION NOT NULL,
			first_inserted_at_run TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transcript_lines_video_id
			ON youtube_transcript_lines (video_id);
	`
	_, err := DB.Exec(schema)
	return err
}
