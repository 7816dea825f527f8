package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-rag/internal/config"
	"cv-rag/internal/models"
)

type fakeWriter struct {
	docs    []string
	batches [][]models.ChunkRecord
	docErr  error
}

func (f *fakeWriter) InsertDocument(ctx context.Context, filename, filePath string, totalPages int) (string, error) {
	if f.docErr != nil {
		return "", f.docErr
	}
	id := fmt.Sprintf("doc-%d", len(f.docs)+1)
	f.docs = append(f.docs, filename)
	return id, nil
}

func (f *fakeWriter) InsertChunkBatch(ctx context.Context, recs []models.ChunkRecord) error {
	batch := make([]models.ChunkRecord, len(recs))
	copy(batch, recs)
	f.batches = append(f.batches, batch)
	return nil
}

type countingEmbedder struct{}

func (countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1, 0}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RAG: config.RAGConfig{
			ChunkSize:    200,
			ChunkOverlap: 60,
			BatchSize:    3,
		},
	}
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resumeText(sentences int) string {
	var parts []string
	for i := 0; i < sentences; i++ {
		parts = append(parts, fmt.Sprintf("Worked on distributed system number %d for several years", i))
	}
	return strings.Join(parts, ". ") + "."
}

func TestProcessFileStoresChunksInBatches(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "resume.txt", resumeText(40))

	writer := &fakeWriter{}
	proc := NewProcessor(writer, countingEmbedder{}, testConfig())

	docID, err := proc.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", docID)
	require.Equal(t, []string{"resume.txt"}, writer.docs)

	require.NotEmpty(t, writer.batches)
	total := 0
	for i, batch := range writer.batches {
		assert.LessOrEqual(t, len(batch), 3, "batch %d exceeds batch size", i)
		if i < len(writer.batches)-1 {
			assert.Len(t, batch, 3, "only the final batch may be short")
		}
		total += len(batch)
	}

	// chunk indexes contiguous and page numbers assigned
	index := 0
	for _, batch := range writer.batches {
		for _, rec := range batch {
			assert.Equal(t, index, rec.ChunkIndex)
			assert.Equal(t, "doc-1", rec.DocumentID)
			assert.GreaterOrEqual(t, rec.PageNumber, 1)
			assert.NotEmpty(t, rec.Embedding)
			index++
		}
	}
	assert.Equal(t, total, index)
}

func TestProcessFileEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "empty.txt", "   \n  ")

	writer := &fakeWriter{}
	proc := NewProcessor(writer, countingEmbedder{}, testConfig())

	_, err := proc.ProcessFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNoTextContent)
	assert.Empty(t, writer.docs, "no document metadata stored for empty documents")
}

func TestProcessFileUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "resume.exe", "binary")

	proc := NewProcessor(&fakeWriter{}, countingEmbedder{}, testConfig())
	_, err := proc.ProcessFile(context.Background(), path)
	assert.ErrorContains(t, err, "unsupported file format")
}

func TestProcessDirectoryIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "good.txt", resumeText(5))
	writeTempFile(t, dir, "bad.txt", "")
	writeTempFile(t, dir, "ignored.exe", "not a resume")

	writer := &fakeWriter{}
	proc := NewProcessor(writer, countingEmbedder{}, testConfig())

	err := proc.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err, "one failing document must not fail the run")
	assert.Equal(t, []string{"good.txt"}, writer.docs)
}

func TestProcessDirectoryMissing(t *testing.T) {
	proc := NewProcessor(&fakeWriter{}, countingEmbedder{}, testConfig())
	err := proc.ProcessDirectory(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("model down")
}

func TestProcessFileEmbeddingFailureAborts(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "resume.txt", resumeText(10))

	writer := &fakeWriter{}
	proc := NewProcessor(writer, failingEmbedder{}, testConfig())

	_, err := proc.ProcessFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmbedding)
	assert.Empty(t, writer.batches, "no chunk batches stored when embedding fails")
}

func TestSupportedFile(t *testing.T) {
	assert.True(t, SupportedFile("resume.pdf"))
	assert.True(t, SupportedFile("Resume.PDF"))
	assert.True(t, SupportedFile("cv.docx"))
	assert.True(t, SupportedFile("notes.md"))
	assert.True(t, SupportedFile("skills.xlsx"))
	assert.False(t, SupportedFile("archive.zip"))
	assert.False(t, SupportedFile("noext"))
}

func TestExtractTextFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "plain.txt", "Senior engineer with Go experience.")

	ex, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Senior engineer with Go experience.", ex.Text)
	assert.Equal(t, 1, ex.Pages)
}

func TestExtractMarkdownStripsSyntax(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "cv.md", "# Jane Doe\n\nSenior **engineer** with `Go` experience.\n\n- Kubernetes\n- Postgres\n")

	ex, err := Extract(path)
	require.NoError(t, err)
	assert.Contains(t, ex.Text, "Jane Doe")
	assert.Contains(t, ex.Text, "engineer")
	assert.Contains(t, ex.Text, "Kubernetes")
	assert.NotContains(t, ex.Text, "#")
	assert.NotContains(t, ex.Text, "**")
	assert.Equal(t, 1, ex.Pages)
}
