package pipeline_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/schema"

	"yt-qabot/internal/pipeline"
	"yt-qabot/internal/test"
)

func TestLoadDocumentDataSkipsVideosWithoutLines(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT id FROM youtube_videos`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("v1").AddRow("v2"))
	mock.ExpectQuery(`SELECT text FROM youtube_transcript_lines`).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"text"}).AddRow("hello").AddRow("world"))
	mock.ExpectQuery(`SELECT text FROM youtube_transcript_lines`).
		WithArgs("v2").
		WillReturnRows(sqlmock.NewRows([]string{"text"}))

	documents, err := pipeline.LoadDocumentData()
	assert.NoError(t, err)

	// v2 has no lines and must not show up, not even as an empty document.
	assert.Len(t, documents, 1)
	assert.Equal(t, "hello world", documents[0].PageContent)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", documents[0].Metadata["source"])
	assert.Equal(t, "v1", documents[0].Metadata["video_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanDataCollapsesWhitespace(t *testing.T) {
	documents := []schema.Document{
		{PageContent: "  hello\n\nworld\t again  ", Metadata: map[string]any{"video_id": "v1"}},
	}

	cleaned := pipeline.CleanData(documents)
	assert.Equal(t, "hello world again", cleaned[0].PageContent)
	assert.Equal(t, "v1", cleaned[0].Metadata["video_id"])

	// The input slice keeps its original text.
	assert.Equal(t, "  hello\n\nworld\t again  ", documents[0].PageContent)
}

func TestCleanDataIsIdempotent(t *testing.T) {
	documents := []schema.Document{
		{PageContent: "some\n text \t with   gaps"},
	}

	once := pipeline.CleanData(documents)
	twice := pipeline.CleanData(once)
	assert.Equal(t, once[0].PageContent, twice[0].PageContent)
}

func TestGenerateTextChunksRespectsBounds(t *testing.T) {
	words := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		words = append(words, "terraform")
	}
	text := strings.Join(words, " ")

	documents := []schema.Document{
		{PageContent: text, Metadata: map[string]any{"video_id": "v1", "source": "https://www.youtube.com/watch?v=v1"}},
	}

	chunks, err := pipeline.GenerateTextChunks(documents, pipeline.DefaultChunkSize, pipeline.DefaultChunkOverlap)
	assert.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.PageContent), pipeline.DefaultChunkSize)
		assert.Equal(t, "v1", chunk.Metadata["video_id"])
		assert.Equal(t, "https://www.youtube.com/watch?v=v1", chunk.Metadata["source"])
	}
}

func TestGenerateTextChunksOverlap(t *testing.T) {
	documents := []schema.Document{
		{PageContent: "aa bb cc dd ee ff gg hh ii jj kk ll", Metadata: map[string]any{}},
	}

	chunks, err := pipeline.GenerateTextChunks(documents, 10, 4)
	assert.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		overlap := suffixPrefixOverlap(chunks[i].PageContent, chunks[i+1].PageContent)
		assert.GreaterOrEqual(t, overlap, 0)
		assert.LessOrEqual(t, overlap, 4)
	}
}

// suffixPrefixOverlap is the length of the longest suffix of a that is also a
// prefix of b.
func suffixPrefixOverlap(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return n
		}
	}
	return 0
}

func TestExportTranscripts(t *testing.T) {
	_, mock := test.NewMockDB(t)
	dir := t.TempDir()

	mock.ExpectQuery(`SELECT id FROM youtube_videos`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("v1").AddRow("v2"))
	mock.ExpectQuery(`SELECT text FROM youtube_transcript_lines`).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"text"}).AddRow("hello").AddRow("world"))
	mock.ExpectQuery(`SELECT text FROM youtube_transcript_lines`).
		WithArgs("v2").
		WillReturnRows(sqlmock.NewRows([]string{"text"}))

	count, err := pipeline.ExportTranscripts(dir)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	content, err := os.ReadFile(filepath.Join(dir, "v1.txt"))
	assert.NoError(t, err)
	assert.Equal(t, "hello world", string(content))

	_, err = os.Stat(filepath.Join(dir, "v2.txt"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
