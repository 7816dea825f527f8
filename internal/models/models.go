package models

// ChunkCandidate is the chunker output before embedding and persistence.
// PageNumber is assigned afterward from the chunk's proportional position.
type ChunkCandidate struct {
	Content    string
	PageNumber int
	ChunkIndex int
}

// ChunkRecord is a fully prepared chunk ready for storage.
type ChunkRecord struct {
	DocumentID string
	Content    string
	PageNumber int
	ChunkIndex int
	Embedding  []float32
}

// ChunkMatch is a retrieved passage with its similarity score.
type ChunkMatch struct {
	ID         string
	DocumentID string
	Content    string
	PageNumber int
	ChunkIndex int
	Filename   string
	Similarity float64
}

// StoredChunk is a raw stored passage as fetched for client-side scoring.
// RawEmbedding is the stored vector in its textual form; it may be
// malformed, in which case the passage is deranked rather than dropped.
type StoredChunk struct {
	ID           string
	DocumentID   string
	Content      string
	PageNumber   int
	ChunkIndex   int
	Filename     string
	RawEmbedding string
}

// Citation binds a retrieved passage to the generated answer. Recreated
// per query, never persisted.
type Citation struct {
	ID         string  `json:"id"`
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// QueryResult is the answer plus its citations.
type QueryResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}
