package driven

import "context"

// EmbeddingService encodes text into vectors for similarity search.
// This is an optional service - when nil, vector search returns nothing.
//
// The vectors must come from the same model that populated the VectorStore.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// Used when the vector collection is rebuilt from the corpus.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
