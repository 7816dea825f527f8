package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"cv-rag/internal/chunker"
	"cv-rag/internal/config"
	"cv-rag/internal/embedding"
	"cv-rag/internal/models"
)

// DocumentWriter is the store side of ingestion.
type DocumentWriter interface {
	InsertDocument(ctx context.Context, filename, filePath string, totalPages int) (string, error)
	InsertChunkBatch(ctx context.Context, recs []models.ChunkRecord) error
}

// bound on concurrent embedding calls per document
const maxConcurrentEmbeds = 4

// Processor turns source documents into stored, embedded chunks.
type Processor struct {
	store    DocumentWriter
	embedder embedding.Embedder
	cfg      *config.Config
}

func NewProcessor(store DocumentWriter, embedder embedding.Embedder, cfg *config.Config) *Processor {
	return &Processor{store: store, embedder: embedder, cfg: cfg}
}

// ProcessFile extracts, chunks, embeds and stores one document, returning
// the generated document id. Chunk embeddings are generated concurrently
// and awaited as a batch; storage writes go out in fixed-size batches.
func (p *Processor) ProcessFile(ctx context.Context, filePath string) (string, error) {
	filename := filepath.Base(filePath)
	log.Info().Str("file", filename).Msg("Processing document")

	ex, err := Extract(filePath)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(ex.Text) == "" {
		return "", fmt.Errorf("%s: %w", filename, models.ErrNoTextContent)
	}

	docID, err := p.store.InsertDocument(ctx, filename, filePath, ex.Pages)
	if err != nil {
		return "", err
	}
	log.Debug().Str("document_id", docID).Str("file", filename).Msg("Document metadata stored")

	candidates := chunker.Chunk(ex.Text, p.cfg.RAG.ChunkSize, p.cfg.RAG.ChunkOverlap)
	log.Debug().Int("chunks", len(candidates)).Str("file", filename).Msg("Chunked document")

	records := make([]models.ChunkRecord, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)
	for i, candidate := range candidates {
		g.Go(func() error {
			vec, err := embedding.EmbedText(gctx, p.embedder, candidate.Content)
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", candidate.ChunkIndex, err)
			}
			records[i] = models.ChunkRecord{
				DocumentID: docID,
				Content:    candidate.Content,
				PageNumber: chunker.EstimatePage(i, len(candidates), ex.Pages),
				ChunkIndex: candidate.ChunkIndex,
				Embedding:  vec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	batchSize := p.cfg.RAG.BatchSize
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.store.InsertChunkBatch(ctx, records[start:end]); err != nil {
			return "", err
		}
	}

	log.Info().Str("file", filename).Int("chunks", len(records)).Msg("Document processed")
	return docID, nil
}

// ProcessDirectory ingests every supported file in a directory. A failure
// in one document is logged and does not abort the run; the aggregate
// outcome is reported at the end.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	processed, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !SupportedFile(entry.Name()) {
			continue
		}
		if _, err := p.ProcessFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			log.Error().Err(err).Str("file", entry.Name()).Msg("Failed to process document")
			failed++
			continue
		}
		processed++
	}

	log.Info().Int("processed", processed).Int("failed", failed).Msg("Directory processing completed")
	return nil
}
