package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input,
	// such as an empty session identifier.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVersionConflict indicates a concurrent writer updated a session
	// between our read and our write.
	ErrVersionConflict = errors.New("session version conflict")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector store is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrSearchUnavailable indicates the keyword index has not been built.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrCorpusUnavailable indicates the shop corpus could not be loaded.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrCacheCorrupt indicates a persisted cache entry could not be decoded.
	ErrCacheCorrupt = errors.New("cache entry corrupt")

	// ErrNLUUnavailable indicates no language understanding component is wired.
	ErrNLUUnavailable = errors.New("nlu unavailable")
)

// ErrorCategory selects the apology shown to a user when a turn fails.
type ErrorCategory string

// Available error categories.
const (
	ErrorGeneral      ErrorCategory = "general"
	ErrorTimeout      ErrorCategory = "timeout"
	ErrorInvalidInput ErrorCategory = "invalid_input"
)
