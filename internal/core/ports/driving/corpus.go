package driving

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// CorpusSummary counts the records of the loaded corpus.
type CorpusSummary struct {
	Shops   int    `json:"shops"`
	Menus   int    `json:"menus"`
	Reviews int    `json:"reviews"`
	Coupons int    `json:"coupons"`
	Hash    string `json:"hash"`
}

// CorpusService exposes the shop knowledge corpus.
type CorpusService interface {
	// Reload reads the corpus from its store and rebuilds the search index.
	Reload(ctx context.Context) (CorpusSummary, error)

	// Summary describes the corpus currently served.
	Summary() CorpusSummary

	// Shops returns every shop ordered by ID.
	Shops() []domain.Shop

	// Shop returns a shop by ID or domain.ErrNotFound.
	Shop(id string) (*domain.Shop, error)

	// Document returns a corpus document by its prefixed ID (e.g. "menu_12")
	// or domain.ErrNotFound.
	Document(id string) (domain.Document, error)

	// Export writes the current corpus to another store.
	Export(ctx context.Context, w driven.CorpusWriter) error
}
