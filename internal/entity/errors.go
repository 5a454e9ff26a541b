package entity

import "errors"

// Domain errors
var (
	// Ingest errors
	ErrDatasetRead    = errors.New("dataset cannot be read")
	ErrDatasetInvalid = errors.New("dataset is not valid JSON")

	// Store errors
	ErrEmbeddingMismatch  = errors.New("embedding count does not match document count")
	ErrCollectionNotFound = errors.New("collection not found in snapshot")
	ErrSnapshotMismatch   = errors.New("snapshot does not match the configured embedder")

	// Query errors
	ErrEmptyQuery = errors.New("query is empty")
	ErrEmptyReply = errors.New("model returned no reply")

	// Configuration errors
	ErrMissingAPIKey       = errors.New("GOOGLE_API_KEY is required")
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	ErrUnsupportedFormat   = errors.New("unsupported export format")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
