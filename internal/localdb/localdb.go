package localdb

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"cv-rag/internal/config"
	"cv-rag/internal/helper"
	"cv-rag/internal/models"
)

const compress = false

// Store is an embedded chunk store backed by chromem-go, for running
// without a Postgres instance. It implements the same store surface as
// the Supabase store. A process-local mirror of the stored chunks backs
// the fetch-all and substring paths, which chromem does not expose.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection

	mu        sync.RWMutex
	chunks    []localChunk
	filenames map[string]string // document id -> filename

	encryptionKey string
	filePath      string
	inMemory      bool
}

type localChunk struct {
	ID         string
	DocumentID string
	Content    string
	PageNumber int
	ChunkIndex int
	Filename   string
	Embedding  []float32
}

// New opens (or creates) the local store at the configured path.
func New(cfg *config.LocalConfig, encryptionKey string) (*Store, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	filePath := cfg.Path + "/" + cfg.Collection + ".chromem"

	// an in-memory store reloads the snapshot exported on the last Close,
	// before the collection handle is taken
	if cfg.InMemory && encryptionKey != "" {
		if _, err := os.Stat(filePath); err == nil {
			if err := db.ImportFromFile(filePath, encryptionKey); err != nil {
				return nil, fmt.Errorf("failed to import database: %v", err)
			}
		}
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &Store{
		db:            db,
		collection:    collection,
		filenames:     make(map[string]string),
		encryptionKey: encryptionKey,
		filePath:      filePath,
		inMemory:      cfg.InMemory,
	}, nil
}

func (s *Store) InitSchema(ctx context.Context) error {
	return nil // collection is created on open
}

// Close exports an in-memory collection when an encryption key is set.
func (s *Store) Close() error {
	if s.inMemory && s.encryptionKey != "" {
		return s.Export(context.Background())
	}
	return nil
}

func (s *Store) InsertDocument(ctx context.Context, filename, filePath string, totalPages int) (string, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.filenames[id] = filename
	s.mu.Unlock()
	return id, nil
}

func (s *Store) InsertChunkBatch(ctx context.Context, recs []models.ChunkRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(recs))
	mirror := make([]localChunk, len(recs))
	for i, rec := range recs {
		id, err := helper.GenerateUUID()
		if err != nil {
			return err
		}
		s.mu.RLock()
		filename := s.filenames[rec.DocumentID]
		s.mu.RUnlock()
		docs[i] = chromem.Document{
			ID:      id,
			Content: rec.Content,
			Metadata: map[string]string{
				"document_id": rec.DocumentID,
				"filename":    filename,
				"page_number": strconv.Itoa(rec.PageNumber),
				"chunk_index": strconv.Itoa(rec.ChunkIndex),
			},
			Embedding: rec.Embedding,
		}
		mirror[i] = localChunk{
			ID:         id,
			DocumentID: rec.DocumentID,
			Content:    rec.Content,
			PageNumber: rec.PageNumber,
			ChunkIndex: rec.ChunkIndex,
			Filename:   filename,
			Embedding:  rec.Embedding,
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, mirror...)
	s.mu.Unlock()
	return nil
}

func (s *Store) CountChunks(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// MatchChunks ranks by chromem's cosine query and filters by threshold.
func (s *Store) MatchChunks(ctx context.Context, embedding []float32, threshold float64, count int) ([]models.ChunkMatch, error) {
	total := s.collection.Count()
	if total == 0 {
		return nil, nil
	}
	if count > total {
		count = total
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	var matches []models.ChunkMatch
	for _, r := range results {
		similarity := float64(r.Similarity)
		if similarity <= threshold {
			continue
		}
		matches = append(matches, resultToMatch(r, similarity))
	}
	return matches, nil
}

func resultToMatch(r chromem.Result, similarity float64) models.ChunkMatch {
	page, _ := strconv.Atoi(r.Metadata["page_number"])
	index, _ := strconv.Atoi(r.Metadata["chunk_index"])
	return models.ChunkMatch{
		ID:         r.ID,
		DocumentID: r.Metadata["document_id"],
		Content:    r.Content,
		PageNumber: page,
		ChunkIndex: index,
		Filename:   r.Metadata["filename"],
		Similarity: similarity,
	}
}

func (s *Store) FetchAllChunks(ctx context.Context) ([]models.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := make([]models.StoredChunk, len(s.chunks))
	for i, c := range s.chunks {
		stored[i] = models.StoredChunk{
			ID:           c.ID,
			DocumentID:   c.DocumentID,
			Content:      c.Content,
			PageNumber:   c.PageNumber,
			ChunkIndex:   c.ChunkIndex,
			Filename:     c.Filename,
			RawEmbedding: helper.EncodeVector(c.Embedding),
		}
	}
	return stored, nil
}

func (s *Store) MatchContent(ctx context.Context, term string, limit int) ([]models.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(term)
	var matches []models.ChunkMatch
	for _, c := range s.chunks {
		if !strings.Contains(strings.ToLower(c.Content), lower) {
			continue
		}
		matches = append(matches, models.ChunkMatch{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			PageNumber: c.PageNumber,
			ChunkIndex: c.ChunkIndex,
			Filename:   c.Filename,
		})
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// export to file
func (s *Store) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if s.collection == nil {
		return fmt.Errorf("collection is required")
	}

	log.Debug().Str("file", s.filePath).Msg("Exporting collection")
	if err := s.db.ExportToFile(s.filePath, compress, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}
