package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"cv-rag/internal/helper"
	"cv-rag/internal/models"
)

// Store exposes the chunk-store operations over a Supabase Postgres
// database. Ingestion writes, queries read; no locking is needed.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InitSchema(ctx context.Context) error {
	return InitDB(ctx, s.db)
}

// InsertDocument stores document metadata and returns the generated id.
func (s *Store) InsertDocument(ctx context.Context, filename, filePath string, totalPages int) (string, error) {
	doc := &CVDocument{
		Filename:   filename,
		FilePath:   filePath,
		TotalPages: totalPages,
	}
	if _, err := s.db.NewInsert().Model(doc).Returning("id").Exec(ctx); err != nil {
		return "", fmt.Errorf("storing document metadata: %w", err)
	}
	return doc.ID, nil
}

// InsertChunkBatch stores one batch of embedded chunks.
func (s *Store) InsertChunkBatch(ctx context.Context, recs []models.ChunkRecord) error {
	if len(recs) == 0 {
		return nil
	}
	chunks := make([]CVChunk, len(recs))
	for i, rec := range recs {
		chunks[i] = CVChunk{
			DocumentID: rec.DocumentID,
			Content:    rec.Content,
			PageNumber: rec.PageNumber,
			ChunkIndex: rec.ChunkIndex,
			Embedding:  rec.Embedding,
		}
	}
	if _, err := s.db.NewInsert().Model(&chunks).Exec(ctx); err != nil {
		return fmt.Errorf("storing chunk batch: %w", err)
	}
	return nil
}

func (s *Store) CountChunks(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*CVChunk)(nil)).Count(ctx)
}

// matchRow mirrors the row shape returned by the match_cv_chunks function.
type matchRow struct {
	ID         string  `bun:"id"`
	DocumentID string  `bun:"document_id"`
	Content    string  `bun:"content"`
	PageNumber int     `bun:"page_number"`
	ChunkIndex int     `bun:"chunk_index"`
	Filename   string  `bun:"filename"`
	Similarity float64 `bun:"similarity"`
}

// MatchChunks delegates ranking to the server-side match_cv_chunks
// function, which returns pre-sorted rows above the threshold.
func (s *Store) MatchChunks(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.ChunkMatch, error) {
	var rows []matchRow
	err := s.db.NewRaw(
		`SELECT id, document_id, content, page_number, chunk_index, filename, similarity
		 FROM match_cv_chunks(?::vector, ?, ?)`,
		helper.EncodeVector(embedding), threshold, count,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("ranked match query: %w", err)
	}
	return matchRowsToModels(rows), nil
}

type storedRow struct {
	ID           string `bun:"id"`
	DocumentID   string `bun:"document_id"`
	Content      string `bun:"content"`
	PageNumber   int    `bun:"page_number"`
	ChunkIndex   int    `bun:"chunk_index"`
	Filename     string `bun:"filename"`
	RawEmbedding string `bun:"raw_embedding"`
}

// FetchAllChunks returns every stored chunk joined with its parent
// filename. Embeddings come back as text so that malformed stored vectors
// reach the caller instead of failing the scan.
func (s *Store) FetchAllChunks(ctx context.Context) ([]models.StoredChunk, error) {
	var rows []storedRow
	err := s.db.NewRaw(
		`SELECT cc.id, cc.document_id, cc.content, cc.page_number, cc.chunk_index,
		        cc.embedding::text AS raw_embedding, cd.filename
		 FROM cv_chunks cc
		 JOIN cv_documents cd ON cd.id = cc.document_id
		 ORDER BY cd.filename, cc.chunk_index`,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetching chunks: %w", err)
	}
	stored := make([]models.StoredChunk, len(rows))
	for i, r := range rows {
		stored[i] = models.StoredChunk{
			ID:           r.ID,
			DocumentID:   r.DocumentID,
			Content:      r.Content,
			PageNumber:   r.PageNumber,
			ChunkIndex:   r.ChunkIndex,
			Filename:     r.Filename,
			RawEmbedding: r.RawEmbedding,
		}
	}
	return stored, nil
}

// MatchContent finds chunks whose content contains the term,
// case-insensitively. Similarity is left for the caller to assign.
func (s *Store) MatchContent(ctx context.Context, term string, limit int) ([]models.ChunkMatch, error) {
	var rows []matchRow
	err := s.db.NewRaw(
		`SELECT cc.id, cc.document_id, cc.content, cc.page_number, cc.chunk_index,
		        cd.filename, 0.0 AS similarity
		 FROM cv_chunks cc
		 JOIN cv_documents cd ON cd.id = cc.document_id
		 WHERE cc.content ILIKE '%' || ? || '%'
		 ORDER BY cd.filename, cc.chunk_index
		 LIMIT ?`,
		term, limit,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("content match query: %w", err)
	}
	return matchRowsToModels(rows), nil
}

func matchRowsToModels(rows []matchRow) []models.ChunkMatch {
	matches := make([]models.ChunkMatch, len(rows))
	for i, r := range rows {
		matches[i] = models.ChunkMatch{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			Content:    r.Content,
			PageNumber: r.PageNumber,
			ChunkIndex: r.ChunkIndex,
			Filename:   r.Filename,
			Similarity: r.Similarity,
		}
	}
	return matches
}
