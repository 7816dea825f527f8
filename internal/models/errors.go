package models

import "errors"

var (
	// ErrEmptyQuery rejects a missing or blank query before any retrieval work.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrStoreUnavailable means the chunk store could not be reached; the
	// query is aborted, not retried.
	ErrStoreUnavailable = errors.New("chunk store unavailable")

	// ErrEmbedding means the embedding model call failed.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrGeneration means the answer model call failed.
	ErrGeneration = errors.New("answer generation failed")

	// ErrNoTextContent means a document yielded no extractable text.
	ErrNoTextContent = errors.New("no text content found in document")
)
