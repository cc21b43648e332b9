package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService serves shop and document lookups and keeps the search index
// in step with the corpus store.
type CorpusService struct {
	store   driven.CorpusStore
	search  driving.SearchService
	current atomic.Pointer[domain.Corpus]
}

// NewCorpusService creates a corpus service serving initial until the first Reload.
func NewCorpusService(store driven.CorpusStore, search driving.SearchService, initial domain.Corpus) *CorpusService {
	s := &CorpusService{
		store:  store,
		search: search,
	}
	s.current.Store(&initial)
	return s
}

// Reload reads the corpus and rebuilds the search index.
// On failure the previous corpus keeps serving.
func (s *CorpusService) Reload(ctx context.Context) (driving.CorpusSummary, error) {
	if s.store == nil {
		return driving.CorpusSummary{}, domain.ErrCorpusUnavailable
	}

	corpus, err := s.store.LoadCorpus(ctx)
	if err != nil {
		return driving.CorpusSummary{}, fmt.Errorf("load corpus: %w", err)
	}
	if s.search != nil {
		if err := s.search.Rebuild(ctx, corpus); err != nil {
			return driving.CorpusSummary{}, fmt.Errorf("rebuild index: %w", err)
		}
	}
	s.current.Store(&corpus)

	summary := summarise(corpus)
	logger.Info("Corpus reloaded: %d shops, %d menus", summary.Shops, summary.Menus)
	return summary, nil
}

// Summary describes the corpus currently served.
func (s *CorpusService) Summary() driving.CorpusSummary {
	return summarise(*s.current.Load())
}

func summarise(corpus domain.Corpus) driving.CorpusSummary {
	summary := driving.CorpusSummary{
		Shops:   len(corpus.Shops),
		Reviews: len(corpus.Reviews),
		Coupons: len(corpus.Coupons),
		Hash:    corpus.ContentHash(),
	}
	for _, shop := range corpus.Shops {
		summary.Menus += len(shop.Menus)
	}
	return summary
}

// Shops returns every shop ordered by ID.
func (s *CorpusService) Shops() []domain.Shop {
	corpus := s.current.Load()
	ids := corpus.ShopIDs()
	shops := make([]domain.Shop, 0, len(ids))
	for _, id := range ids {
		shops = append(shops, corpus.Shops[id])
	}
	return shops
}

// Shop returns a shop by ID.
func (s *CorpusService) Shop(id string) (*domain.Shop, error) {
	shop, ok := s.current.Load().Shops[id]
	if !ok {
		return nil, fmt.Errorf("shop %s: %w", id, domain.ErrNotFound)
	}
	return &shop, nil
}

// Document returns a corpus document by ID.
func (s *CorpusService) Document(id string) (domain.Document, error) {
	for _, doc := range s.current.Load().Documents() {
		if doc.ID() == id {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

// Export writes the current corpus to w.
func (s *CorpusService) Export(ctx context.Context, w driven.CorpusWriter) error {
	corpus := s.current.Load()
	if err := w.SaveCorpus(ctx, *corpus); err != nil {
		return fmt.Errorf("export corpus: %w", err)
	}
	logger.Info("Corpus exported: %d shops", len(corpus.Shops))
	return nil
}
