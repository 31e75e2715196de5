package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"yt-qabot/internal/db"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 10
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// LoadDocumentData assembles one document per video that has transcript lines
// in the store. Videos without any lines are left out entirely rather than
// appearing as empty documents.
func LoadDocumentData() ([]schema.Document, error) {
	videoIDs, err := db.GetAllVideoIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list video ids: %w", err)
	}

	var documents []schema.Document
	for _, videoID := range videoIDs {
		available, transcript, err := db.TranscriptTextForVideo(videoID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transcript for %s: %w", videoID, err)
		}
		if !available {
			log.Printf("Skipping %s: no transcript in store", videoID)
			continue
		}

		documents = append(documents, schema.Document{
			PageContent: transcript,
			Metadata: map[string]any{
				"source":   fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
				"video_id": videoID,
			},
		})
	}

	log.Printf("Assembled %d documents from the transcript store", len(documents))
	return documents, nil
}

// CleanData collapses whitespace runs (including newlines) to single spaces
// and trims each document. A new slice is returned; the input is untouched.
func CleanData(documents []schema.Document) []schema.Document {
	cleaned := make([]schema.Document, 0, len(documents))
	for _, document := range documents {
		document.PageContent = whitespaceRun.ReplaceAllString(strings.TrimSpace(document.PageContent), " ")
		cleaned = append(cleaned, document)
	}
	return cleaned
}

// GenerateTextChunks splits documents into overlapping chunks, breaking at
// the largest boundary (paragraph, sentence, word) that fits before falling
// back to hard cuts. Each chunk keeps its parent document's metadata.
func GenerateTextChunks(documents []schema.Document, chunkSize int, chunkOverlap int) ([]schema.Document, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	return textsplitter.SplitDocuments(splitter, documents)
}

// ExportTranscripts writes one <videoID>.txt per transcribed video under dir
// and returns how many files were written.
func ExportTranscripts(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	videoIDs, err := db.GetAllVideoIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list video ids: %w", err)
	}

	count := 0
	for _, videoID := range videoIDs {
		available, transcript, err := db.TranscriptTextForVideo(videoID)
		if err != nil {
			return count, fmt.Errorf("failed to load transcript for %s: %w", videoID, err)
		}
		if !available {
			continue
		}

		path := filepath.Join(dir, videoID+".txt")
		if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
			return count, fmt.Errorf("failed to write %s: %w", path, err)
		}
		count++
	}

	return count, nil
}
