package app

import "errors"

// Closed error taxonomy for the pipeline. During ingestion these decide the
// terminal status of a document; during querying they are surfaced to the
// caller. A no-knowledge retrieval result is not in this list because it is a
// valid answer, not an error.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyContent     = errors.New("document content is empty")
	ErrEmbedding        = errors.New("embedding computation failed")
	ErrGeneration       = errors.New("answer generation failed")
	ErrDocumentNotFound = errors.New("document not found")
)
