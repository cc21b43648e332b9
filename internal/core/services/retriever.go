package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.SearchService = (*Retriever)(nil)

const (
	// defaultTopK applies when a caller passes a non-positive topK.
	defaultTopK = 10

	// vectorBatchSize bounds texts per embedding request when syncing vectors.
	vectorBatchSize = 32
)

// ContextFilter decides whether a candidate survives a context filter.
// It may annotate the result in place.
type ContextFilter func(result *domain.SearchResult, sc domain.SearchContext) bool

// corpusState is an immutable corpus together with its keyword index.
// Rebuild swaps the whole state atomically.
type corpusState struct {
	corpus  domain.Corpus
	hash    string
	index   domain.InvertedIndex
	version string
}

// RetrieverConfig holds fusion weights and the cache schema version.
type RetrieverConfig struct {
	KeywordWeight float64
	VectorWeight  float64
	CacheVersion  string
}

// Retriever provides keyword, vector and hybrid shop search.
type Retriever struct {
	cfg       RetrieverConfig
	state     atomic.Pointer[corpusState]
	synonyms  domain.SynonymDictionary
	vector    driven.VectorStore
	embedder  driven.EmbeddingService
	snapshots driven.IndexSnapshotStore
	cache     driving.CacheService

	locationFilter ContextFilter
	timeFilter     ContextFilter
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithVectorSearch enables vector search. Either argument may be nil,
// in which case vector search returns no results.
func WithVectorSearch(store driven.VectorStore, embedder driven.EmbeddingService) RetrieverOption {
	return func(r *Retriever) {
		r.vector = store
		r.embedder = embedder
	}
}

// WithSynonyms sets the synonym dictionary used for query expansion.
func WithSynonyms(synonyms domain.SynonymDictionary) RetrieverOption {
	return func(r *Retriever) { r.synonyms = synonyms }
}

// WithIndexSnapshots persists keyword indexes keyed by corpus hash.
func WithIndexSnapshots(store driven.IndexSnapshotStore) RetrieverOption {
	return func(r *Retriever) { r.snapshots = store }
}

// WithQueryCache memoises context searches.
func WithQueryCache(cache driving.CacheService) RetrieverOption {
	return func(r *Retriever) { r.cache = cache }
}

// WithLocationFilter installs the location filter hook.
func WithLocationFilter(f ContextFilter) RetrieverOption {
	return func(r *Retriever) { r.locationFilter = f }
}

// WithTimeFilter installs the time filter hook.
func WithTimeFilter(f ContextFilter) RetrieverOption {
	return func(r *Retriever) { r.timeFilter = f }
}

// NewRetriever builds the keyword index for corpus and returns a ready retriever.
func NewRetriever(corpus domain.Corpus, cfg RetrieverConfig, opts ...RetrieverOption) *Retriever {
	r := &Retriever{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	r.swap(corpus)
	return r
}

// Rebuild replaces the corpus. Searches in flight keep the previous index;
// later searches see the new one.
func (r *Retriever) Rebuild(_ context.Context, corpus domain.Corpus) error {
	logger.Section("Index Rebuild")
	r.swap(corpus)
	return nil
}

func (r *Retriever) swap(corpus domain.Corpus) {
	hash := corpus.ContentHash()
	index := loadOrBuildIndex(corpus, hash, r.snapshots)
	r.state.Store(&corpusState{
		corpus:  corpus,
		hash:    hash,
		index:   index,
		version: r.cfg.CacheVersion + ":" + shortHash(hash),
	})
	logger.Info("Corpus loaded: %d shops, hash %s", len(corpus.Shops), shortHash(hash))
}

// CorpusHash returns the content hash of the current corpus.
func (r *Retriever) CorpusHash() string {
	return r.state.Load().hash
}

// CacheVersion returns the version tag mixed into cache keys.
// It changes whenever the corpus changes.
func (r *Retriever) CacheVersion() string {
	return r.state.Load().version
}

// Shop returns a shop from the current corpus.
func (r *Retriever) Shop(id string) (domain.Shop, bool) {
	shop, ok := r.state.Load().corpus.Shops[id]
	return shop, ok
}

// KeywordSearch ranks shops by synonym-expanded token matches.
func (r *Retriever) KeywordSearch(_ context.Context, query string, topK int) ([]domain.ScoredShop, error) {
	state := r.state.Load()
	results := keywordScores(state.index, query, r.synonyms, topK)
	logger.Debug("Keyword search: query=%q, limit=%d, hits=%d", query, topK, len(results))
	return results, nil
}

// VectorSearch embeds the query and asks the vector store for neighbours.
func (r *Retriever) VectorSearch(ctx context.Context, query string, topK int) ([]domain.ScoredShop, error) {
	if r.vector == nil || r.embedder == nil {
		logger.Debug("Vector search unavailable, skipping")
		return nil, nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := r.vector.Search(ctx, embedding, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))
	return hits, nil
}

// HybridSearch runs keyword and vector search concurrently and fuses
// their scores as KeywordWeight*keyword + VectorWeight*vector.
// A failing sub-search contributes nothing.
func (r *Retriever) HybridSearch(ctx context.Context, query string, opts domain.HybridOptions) ([]domain.SearchResult, error) {
	results, _ := r.hybrid(ctx, query, opts)
	return results, nil
}

// hybrid is HybridSearch that also reports whether a sub-search failed
// or panicked and the results are therefore partial.
func (r *Retriever) hybrid(ctx context.Context, query string, opts domain.HybridOptions) ([]domain.SearchResult, bool) {
	logger.Section("Hybrid Search")
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, false
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	state := r.state.Load()

	var keywordResults, vectorResults []domain.ScoredShop
	var keywordErr, vectorErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer recoverSubSearch("keyword", &keywordErr)
		keywordResults = keywordScores(state.index, query, r.synonyms, topK*2)
	}()

	go func() {
		defer wg.Done()
		defer recoverSubSearch("vector", &vectorErr)
		vectorResults, vectorErr = r.VectorSearch(ctx, query, topK*2)
	}()

	wg.Wait()

	if keywordErr != nil {
		logger.Warn("Hybrid search: keyword search failed, using vector results only: %v", keywordErr)
		keywordResults = nil
	}
	if vectorErr != nil {
		logger.Warn("Hybrid search: vector search failed, using keyword results only: %v", vectorErr)
		vectorResults = nil
	}
	logger.Debug("Hybrid search: fusing %d keyword + %d vector results (weights %.2f/%.2f)",
		len(keywordResults), len(vectorResults), opts.KeywordWeight, opts.VectorWeight)

	results := fuse(state.corpus, keywordResults, vectorResults, opts.KeywordWeight, opts.VectorWeight)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, keywordErr != nil || vectorErr != nil
}

// recoverSubSearch turns a panic in a sub-search goroutine into *errp.
func recoverSubSearch(name string, errp *error) {
	if p := recover(); p != nil {
		*errp = fmt.Errorf("%s search panicked: %v", name, p)
	}
}

// fuse combines both score lists and attaches shop metadata.
// Vector hits for shops missing from the corpus are dropped.
func fuse(corpus domain.Corpus, keyword, vector []domain.ScoredShop, kw, vw float64) []domain.SearchResult {
	keywordScores := make(map[string]float64, len(keyword))
	for _, hit := range keyword {
		keywordScores[hit.ShopID] = hit.Score
	}
	vectorScores := make(map[string]float64, len(vector))
	for _, hit := range vector {
		if _, ok := corpus.Shops[hit.ShopID]; !ok {
			logger.Debug("Hybrid search: vector hit %s not in corpus", hit.ShopID)
			continue
		}
		if hit.Score > vectorScores[hit.ShopID] {
			vectorScores[hit.ShopID] = hit.Score
		}
	}

	ids := make(map[string]struct{}, len(keywordScores)+len(vectorScores))
	for id := range keywordScores {
		ids[id] = struct{}{}
	}
	for id := range vectorScores {
		ids[id] = struct{}{}
	}

	results := make([]domain.SearchResult, 0, len(ids))
	for id := range ids {
		shop := corpus.Shops[id]
		k := keywordScores[id]
		v := vectorScores[id]
		results = append(results, domain.SearchResult{
			ShopID:       id,
			ShopName:     shop.Name,
			Category:     shop.Category,
			Score:        kw*k + vw*v,
			KeywordScore: k,
			VectorScore:  v,
			Menus:        slices.Clone(shop.Menus),
			Description:  shop.Description,
			Tags:         slices.Clone(shop.Tags),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ShopID < results[j].ShopID
	})
	return results
}

// SearchByContext fetches 2*topK hybrid candidates, drops those failing the
// budget, location or time filters in that order, and returns the first topK.
func (r *Retriever) SearchByContext(
	ctx context.Context, query string, sc domain.SearchContext, topK int,
) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	version := r.CacheVersion()
	filters := sc.Filters()
	filters["top_k"] = topK

	if r.cache != nil {
		if cached, ok := r.cache.Get(query, filters, version); ok {
			logger.Debug("Context search: cache hit for %q", query)
			return cached, nil
		}
	}

	candidates, degraded := r.hybrid(ctx, query, domain.HybridOptions{
		TopK:          topK * 2,
		KeywordWeight: r.cfg.KeywordWeight,
		VectorWeight:  r.cfg.VectorWeight,
	})

	results := make([]domain.SearchResult, 0, topK)
	for i := range candidates {
		candidate := candidates[i]
		if !r.passes(&candidate, sc) {
			continue
		}
		results = append(results, candidate)
		if len(results) == topK {
			break
		}
	}
	logger.Debug("Context search: %d of %d candidates kept (context %+v)", len(results), len(candidates), sc)

	// Partial results are never cached.
	if r.cache != nil && !degraded {
		r.cache.Set(query, results, filters, version)
	}
	return results, nil
}

func (r *Retriever) passes(result *domain.SearchResult, sc domain.SearchContext) bool {
	if sc.Budget > 0 && !budgetFilter(result, sc) {
		return false
	}
	if sc.Location != "" && r.locationFilter != nil && !r.locationFilter(result, sc) {
		return false
	}
	if sc.Time != "" && r.timeFilter != nil && !r.timeFilter(result, sc) {
		return false
	}
	return true
}

// budgetFilter keeps shops with at least one priced menu within budget
// and records those menus on the result.
func budgetFilter(result *domain.SearchResult, sc domain.SearchContext) bool {
	var affordable []domain.Menu
	for _, menu := range result.Menus {
		if !menu.Unpriced && menu.Price <= sc.Budget {
			affordable = append(affordable, menu)
		}
	}
	if len(affordable) == 0 {
		return false
	}
	result.AffordableMenus = affordable
	return true
}

// SyncVectors embeds every corpus document and upserts it into the vector store.
// Returns the number of documents written.
func (r *Retriever) SyncVectors(ctx context.Context) (int, error) {
	if r.vector == nil {
		return 0, domain.ErrVectorIndexUnavailable
	}
	if r.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	docs := r.state.Load().corpus.Documents()
	written := 0
	for start := 0; start < len(docs); start += vectorBatchSize {
		end := min(start+vectorBatchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content()
		}
		embeddings, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("embed documents %d-%d: %w", start, end, err)
		}
		if len(embeddings) != len(batch) {
			return written, fmt.Errorf("embed documents %d-%d: got %d embeddings", start, end, len(embeddings))
		}

		points := make([]driven.VectorPoint, len(batch))
		for i, doc := range batch {
			points[i] = driven.VectorPoint{
				DocumentID: doc.ID(),
				Embedding:  embeddings[i],
				Payload:    doc.Metadata(),
			}
		}
		if err := r.vector.Upsert(ctx, points); err != nil {
			return written, fmt.Errorf("upsert documents %d-%d: %w", start, end, err)
		}
		written += len(points)
		logger.Debug("Vector sync: %d/%d documents", written, len(docs))
	}
	return written, nil
}
