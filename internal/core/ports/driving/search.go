package driving

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// SearchService provides shop retrieval to external actors.
type SearchService interface {
	// KeywordSearch ranks shops by synonym-expanded token matches.
	// Scores are normalised so the best match scores 1.0.
	KeywordSearch(ctx context.Context, query string, topK int) ([]domain.ScoredShop, error)

	// VectorSearch ranks shops by embedding similarity.
	// Returns an empty list when no vector store is configured.
	VectorSearch(ctx context.Context, query string, topK int) ([]domain.ScoredShop, error)

	// HybridSearch fuses keyword and vector scores linearly.
	HybridSearch(ctx context.Context, query string, opts domain.HybridOptions) ([]domain.SearchResult, error)

	// SearchByContext runs a hybrid search and applies budget, location
	// and time filters. Results are served from the query cache when possible.
	SearchByContext(ctx context.Context, query string, sc domain.SearchContext, topK int) ([]domain.SearchResult, error)

	// Rebuild swaps in a new corpus and keyword index.
	Rebuild(ctx context.Context, corpus domain.Corpus) error
}
