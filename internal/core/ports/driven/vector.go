package driven

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// VectorStore provides similarity search over embedded corpus documents.
// Backed by qdrant.
type VectorStore interface {
	// Search returns up to topK shops nearest to the embedding.
	// Filters restrict payload fields by exact match. Scores are similarities in [0, 1].
	// A shop matched by several documents appears once with its best score.
	Search(ctx context.Context, embedding []float32, topK int, filters map[string]any) ([]domain.ScoredShop, error)

	// Upsert writes embedded documents into the collection, creating it if needed.
	Upsert(ctx context.Context, points []VectorPoint) error

	// Close releases resources.
	Close() error
}

// VectorPoint is one embedded document.
type VectorPoint struct {
	// DocumentID is the Document ID, e.g. "menu_m1".
	DocumentID string

	// Embedding is the document vector.
	Embedding []float32

	// Payload is the document metadata. It must carry "shop_id".
	Payload map[string]any
}
