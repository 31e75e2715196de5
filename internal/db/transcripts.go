package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"yt-qabot/internal/models"
)

// ReplaceTranscriptLines swaps a video's stored lines for a freshly fetched
// set inside a single transaction. Existing lines are deleted first so a
// re-fetch never appends duplicates, and the fetch-success stamp lands in the
// same transaction as the lines it describes. On error everything rolls back
// and the video stays selectable for the next run.
func ReplaceTranscriptLines(videoID string, lines []models.TranscriptLine, runID time.Time) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", videoID, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM youtube_transcript_lines WHERE video_id = $1", videoID); err != nil {
		return fmt.Errorf("failed to delete old transcript lines for %s: %w", videoID, err)
	}

	for _, line := range lines {
		_, err := tx.Exec(`
			INSERT INTO youtube_transcript_lines (video_id, text, start, duration, first_inserted_at_run)
			VALUES ($1, $2, $3, $4, $5)
		`, videoID, line.Text, line.Start, line.Duration, runID)
		if err != nil {
			return fmt.Errorf("failed to insert transcript line for %s: %w", videoID, err)
		}
	}

	_, err = tx.Exec(`
		UPDATE youtube_videos
		SET transcript_status = $1, fetched_transcripts_at_run = $2
		WHERE id = $3
	`, TranscriptStatusFetched, runID, videoID)
	if err != nil {
		return fmt.Errorf("failed to stamp fetch success for %s: %w", videoID, err)
	}

	return tx.Commit()
}

// TranscriptTextForVideo joins a video's lines, ordered by start offset, with
// single spaces. available is false when the store holds no lines for the
// video; absence of rows is what marks "no transcript".
func TranscriptTextForVideo(videoID string) (bool, string, error) {
	var texts []string
	err := DB.Select(&texts, `
		SELECT text FROM youtube_transcript_lines
		WHERE video_id = $1
		ORDER BY start
	`, videoID)
	if err != nil {
		log.Printf("Error loading transcript lines for %s: %v", videoID, err)
		return false, "", err
	}

	if len(texts) == 0 {
		return false, "", nil
	}

	return true, strings.Join(texts, " "), nil
}
