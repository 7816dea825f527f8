package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"cv-rag/internal/embedding"
	"cv-rag/internal/helper"
	"cv-rag/internal/models"
)

// Store is the passage store consumed by retrieval. Implemented by the
// Supabase store (internal/db) and the embedded local store
// (internal/localdb).
type Store interface {
	CountChunks(ctx context.Context) (int, error)
	MatchChunks(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.ChunkMatch, error)
	FetchAllChunks(ctx context.Context) ([]models.StoredChunk, error)
	MatchContent(ctx context.Context, term string, limit int) ([]models.ChunkMatch, error)
}

// Searcher retrieves the top-K passages for a query, preferring the
// server-ranked path and falling back to exhaustive local scoring.
type Searcher struct {
	store    Store
	embedder embedding.Embedder
}

func NewSearcher(store Store, embedder embedding.Embedder) *Searcher {
	return &Searcher{store: store, embedder: embedder}
}

// Search returns at most count matches with similarity strictly above
// threshold, sorted by similarity descending. An empty store
// short-circuits to an empty result before any embedding call.
func (s *Searcher) Search(ctx context.Context, query string, threshold float64, count int) ([]models.ChunkMatch, error) {
	total, err := s.store.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: counting chunks: %w", models.ErrStoreUnavailable, err)
	}
	if total == 0 {
		log.Debug().Msg("No chunks stored, skipping search")
		return nil, nil
	}

	queryEmbedding, err := embedding.EmbedText(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.MatchChunks(ctx, queryEmbedding, threshold, count)
	if err != nil {
		log.Warn().Err(err).Msg("Ranked match failed, falling back to local scoring")
	} else if len(matches) > 0 {
		log.Debug().Int("matches", len(matches)).Msg("Ranked match results")
		return matches, nil
	}

	stored, err := s.store.FetchAllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching chunks: %w", models.ErrStoreUnavailable, err)
	}
	log.Debug().Int("chunks", len(stored)).Msg("Scoring chunks locally")

	scored := scoreChunks(queryEmbedding, stored)
	filtered := scored[:0]
	for _, m := range scored {
		if m.Similarity > threshold {
			filtered = append(filtered, m)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Similarity > filtered[j].Similarity
	})
	if len(filtered) > count {
		filtered = filtered[:count]
	}
	return filtered, nil
}

// scoreChunks computes a similarity for every stored chunk. A chunk whose
// stored embedding cannot be parsed scores zero and stays in the pool; it
// is deranked, not dropped.
func scoreChunks(query []float32, stored []models.StoredChunk) []models.ChunkMatch {
	matches := make([]models.ChunkMatch, len(stored))
	for i, sc := range stored {
		similarity := 0.0
		vec, err := helper.ParseVector(sc.RawEmbedding)
		if err != nil {
			log.Warn().Err(err).Str("chunk_id", sc.ID).Msg("Skipping similarity for malformed embedding")
		} else {
			similarity = Cosine(query, vec)
		}
		matches[i] = models.ChunkMatch{
			ID:         sc.ID,
			DocumentID: sc.DocumentID,
			Content:    sc.Content,
			PageNumber: sc.PageNumber,
			ChunkIndex: sc.ChunkIndex,
			Filename:   sc.Filename,
			Similarity: similarity,
		}
	}
	return matches
}

// Cosine is the cosine similarity of two vectors, clamped to [0, 1].
// Mismatched lengths or a zero-norm vector yield 0, never NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
