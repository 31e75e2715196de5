package db

import (
	"log"
	"time"

	"yt-qabot/internal/models"
)

const (
	TranscriptStatusPending = "PENDING"
	TranscriptStatusFetched = "FETCHED"
	TranscriptStatusFailed  = "FAILED"
)

// CreateOrGetVideo upserts a video row and associates it with the playlist.
// Calling it again for the same video, from the same or another playlist,
// never creates a second video row; a duplicate association is ignored.
func CreateOrGetVideo(videoID string, playlistID string, runID time.Time) (models.Video, error) {
	video := models.Video{}
	query := `
		INSERT INTO youtube_videos (id, first_inserted_at_run)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING *
	`
	err := DB.Get(&video, query, videoID, runID)
	if err != nil {
		log.Printf("Error upserting video %s: %v", videoID, err)
		return video, err
	}

	_, err = DB.Exec(`
		INSERT INTO playlist_videos (playlist_id, video_id, first_inserted_at_run)
		VALUES ($1, $2, $3)
		ON CONFLICT (playlist_id, video_id) DO NOTHING
	`, playlistID, videoID, runID)
	if err != nil {
		log.Printf("Error associating video %s with playlist %s: %v", videoID, playlistID, err)
		return video, err
	}

	return video, nil
}

func GetAllVideoIDs() ([]string, error) {
	var ids []string
	err := DB.Select(&ids, "SELECT id FROM youtube_videos ORDER BY id")
	if err != nil {
		log.Printf("Error getting video ids: %v", err)
		return nil, err
	}
	return ids, nil
}

// GetVideosNeedingTranscripts selects videos whose last fetch did not
// succeed. Failed videos are re-selected unconditionally on the next run.
func GetVideosNeedingTranscripts() ([]models.Video, error) {
	var videos []models.Video
	query := `
		SELECT * FROM youtube_videos
		WHERE transcript_status != $1
		ORDER BY id
	`
	err := DB.Select(&videos, query, TranscriptStatusFetched)
	if err != nil {
		log.Printf("Error getting videos needing transcripts: %v", err)
		return nil, err
	}
	return videos, nil
}

// MarkTranscriptFetchFailed records an attempt that yielded no transcript,
// either because subtitles are disabled or because the write failed.
func MarkTranscriptFetchFailed(videoID string, runID time.Time) error {
	_, err := DB.Exec(`
		UPDATE youtube_videos
		SET transcript_status = $1, last_failed_transcripts_run = $2
		WHERE id = $3
	`, TranscriptStatusFailed, runID, videoID)
	if err != nil {
		log.Printf("Error marking transcript fetch failed for %s: %v", videoID, err)
	}
	return err
}
