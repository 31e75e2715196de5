package youtube

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"yt-qabot/internal/models"
)

var execCommand = exec.Command

// Fetcher pulls playlist listings and subtitle tracks from YouTube through
// yt-dlp.
type Fetcher struct{}

func NewFetcher() *Fetcher {
	return &Fetcher{}
}

type playlistEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// json3Track matches the json3 subtitle format yt-dlp downloads. Timings are
// in milliseconds; each event carries its text in one or more segments.
type json3Track struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// PlaylistVideos lists the IDs of every video in a playlist by extracting the
// identifier from each entry's canonical watch URL.
func (f *Fetcher) PlaylistVideos(playlistID string) ([]string, error) {
	log.Printf("Fetching videos for playlist %s", playlistID)

	cmd := execCommand("yt-dlp",
		"--flat-playlist",
		"-j",
		fmt.Sprintf("https://www.youtube.com/playlist?list=%s", playlistID),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("failed to execute yt-dlp for playlist %s: %v, output: %s", playlistID, err, string(output))
		return nil, fmt.Errorf("failed to execute yt-dlp for playlist %s: %w", playlistID, err)
	}

	// One JSON object per line, one line per video.
	var videoIDs []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var entry playlistEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			log.Printf("failed to unmarshal playlist entry: %v", err)
			continue
		}

		videoID := videoIDFromURL(entry.URL)
		if videoID == "" {
			videoID = entry.ID
		}
		if videoID != "" {
			videoIDs = append(videoIDs, videoID)
		}
	}

	return videoIDs, nil
}

// FetchTranscript downloads a video's English subtitle track and parses it
// into transcript lines. Videos with subtitles disabled or missing yield an
// empty result, not an error.
func (f *Fetcher) FetchTranscript(videoID string) ([]models.TranscriptLine, error) {
	log.Printf("Fetching transcript for %s", videoID)

	tmpDir, err := os.MkdirTemp("", "transcripts-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	cmd := execCommand("yt-dlp",
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", "en.*",
		"--sub-format", "json3",
		"-o", filepath.Join(tmpDir, "%(id)s"),
		fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("failed to execute yt-dlp for %s: %v, output: %s", videoID, err, string(output))
		return nil, fmt.Errorf("failed to execute yt-dlp for %s: %w", videoID, err)
	}

	matches, err := filepath.Glob(filepath.Join(tmpDir, videoID+"*.json3"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob subtitle files for %s: %w", videoID, err)
	}
	if len(matches) == 0 {
		// No subtitle file means transcripts are disabled or none exist.
		log.Printf("No transcript available for %s", videoID)
		return nil, nil
	}

	return parseSubtitleFile(matches[0], videoID)
}

func parseSubtitleFile(path string, videoID string) ([]models.TranscriptLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file for %s: %w", videoID, err)
	}

	var track json3Track
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subtitle file for %s: %w", videoID, err)
	}

	var lines []models.TranscriptLine
	for _, event := range track.Events {
		var parts []string
		for _, seg := range event.Segs {
			parts = append(parts, seg.UTF8)
		}

		text := strings.TrimSpace(strings.ReplaceAll(strings.Join(parts, ""), "\n", " "))
		if text == "" {
			continue
		}

		lines = append(lines, models.TranscriptLine{
			VideoID:  videoID,
			Text:     text,
			Start:    float64(event.StartMs) / 1000.0,
			Duration: float64(event.DurationMs) / 1000.0,
		})
	}

	return lines, nil
}

func videoIDFromURL(rawURL string) string {
	_, after, found := strings.Cut(rawURL, "v=")
	if !found {
		return ""
	}
	if idx := strings.IndexAny(after, "&#"); idx != -1 {
		after = after[:idx]
	}
	return after
}
