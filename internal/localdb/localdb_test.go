package localdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-rag/internal/config"
	"cv-rag/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(&config.LocalConfig{Collection: "test_chunks", InMemory: true}, "")
	require.NoError(t, err)
	return store
}

func seed(t *testing.T, store *Store) string {
	t.Helper()
	ctx := context.Background()

	docID, err := store.InsertDocument(ctx, "jane_doe.pdf", "/cvs/jane_doe.pdf", 2)
	require.NoError(t, err)

	err = store.InsertChunkBatch(ctx, []models.ChunkRecord{
		{DocumentID: docID, Content: "Jane Doe is proficient in Python.", PageNumber: 1, ChunkIndex: 0, Embedding: []float32{1, 0, 0}},
		{DocumentID: docID, Content: "Led a platform team at Initech.", PageNumber: 2, ChunkIndex: 1, Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)
	return docID
}

func TestLocalStoreCount(t *testing.T) {
	store := newTestStore(t)
	n, err := store.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	seed(t, store)
	n, err = store.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLocalStoreMatchChunks(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	matches, err := store.MatchChunks(context.Background(), []float32{1, 0, 0}, 0.5, 8)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "jane_doe.pdf", matches[0].Filename)
	assert.Equal(t, 1, matches[0].PageNumber)
	assert.Greater(t, matches[0].Similarity, 0.5)
}

func TestLocalStoreMatchChunksEmpty(t *testing.T) {
	store := newTestStore(t)
	matches, err := store.MatchChunks(context.Background(), []float32{1, 0, 0}, 0.5, 8)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLocalStoreFetchAll(t *testing.T) {
	store := newTestStore(t)
	docID := seed(t, store)

	stored, err := store.FetchAllChunks(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, sc := range stored {
		assert.Equal(t, docID, sc.DocumentID)
		assert.Equal(t, "jane_doe.pdf", sc.Filename)
		assert.NotEmpty(t, sc.RawEmbedding)
	}
}

func TestLocalStoreMatchContent(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	matches, err := store.MatchContent(context.Background(), "jane doe", 8)
	require.NoError(t, err)
	require.Len(t, matches, 1, "substring match is case-insensitive")
	assert.Contains(t, matches[0].Content, "Jane Doe")

	matches, err = store.MatchContent(context.Background(), "cobol", 8)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLocalStoreMatchContentLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	docID, err := store.InsertDocument(ctx, "many.pdf", "/cvs/many.pdf", 1)
	require.NoError(t, err)

	var recs []models.ChunkRecord
	for i := 0; i < 5; i++ {
		recs = append(recs, models.ChunkRecord{
			DocumentID: docID,
			Content:    "Shared keyword kubernetes appears here.",
			PageNumber: 1,
			ChunkIndex: i,
			Embedding:  []float32{1, float32(i), 0},
		})
	}
	require.NoError(t, store.InsertChunkBatch(ctx, recs))

	matches, err := store.MatchContent(ctx, "kubernetes", 3)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}
