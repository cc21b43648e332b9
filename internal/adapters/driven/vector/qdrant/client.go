// Package qdrant provides a driven.VectorStore backed by a Qdrant collection
// of embedded corpus documents.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// Compile-time check that Store implements VectorStore.
var _ driven.VectorStore = (*Store)(nil)

const (
	defaultPort     = 6334
	upsertBatchSize = 256

	// Documents per shop vary, so the query over-fetches before
	// collapsing hits to one per shop.
	overFetch = 4

	payloadShopID     = "shop_id"
	payloadDocumentID = "document_id"
)

// pointNamespace derives stable point UUIDs from document ids.
var pointNamespace = uuid.MustParse("6f1c8f1e-5d7a-4d53-9a53-2f0a6f1d9c11")

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the gRPC address, e.g. "localhost:6334" or "https://xyz.qdrant.io:6334".
	// Without a scheme the connection is plaintext.
	URL string

	// Collection is the collection holding document embeddings.
	Collection string

	// APIKey is optional API key for authentication.
	APIKey string
}

// pointsClient is the subset of *qdrant.Client the store uses.
type pointsClient interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Close() error
}

// Store implements driven.VectorStore for Qdrant.
type Store struct {
	client     pointsClient
	collection string
}

// New connects to Qdrant.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}

	host, port, useTLS, err := parseAddress(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &Store{client: client, collection: cfg.Collection}, nil
}

func parseAddress(raw string) (host string, port int, useTLS bool, err error) {
	withScheme := raw
	if !strings.Contains(raw, "://") {
		withScheme = "http://" + raw
	}
	u, err := url.Parse(withScheme)
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to parse qdrant url: %w", err)
	}
	if u.Hostname() == "" {
		return "", 0, false, fmt.Errorf("qdrant url %q has no host", raw)
	}

	port = defaultPort
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid port: %w", err)
		}
	}
	return u.Hostname(), port, u.Scheme == "https", nil
}

// Search returns up to topK shops nearest to the embedding, one entry per shop.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int, filters map[string]any) ([]domain.ScoredShop, error) {
	if topK <= 0 || len(embedding) == 0 {
		return []domain.ScoredShop{}, nil
	}

	limit := uint64(topK * overFetch)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		Filter:         buildFilter(filters),
		WithPayload:    qdrant.NewWithPayloadInclude(payloadShopID),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	best := make(map[string]float64)
	for _, point := range points {
		shopID := point.GetPayload()[payloadShopID].GetStringValue()
		if shopID == "" {
			continue
		}
		score := clamp01(float64(point.GetScore()))
		if prev, ok := best[shopID]; !ok || score > prev {
			best[shopID] = score
		}
	}

	results := make([]domain.ScoredShop, 0, len(best))
	for id, score := range best {
		results = append(results, domain.ScoredShop{ShopID: id, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ShopID < results[j].ShopID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Upsert writes embedded documents, creating the collection on first use.
func (s *Store) Upsert(ctx context.Context, points []driven.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(points[0].Embedding)); err != nil {
		return err
	}

	wait := true
	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		batch := make([]*qdrant.PointStruct, 0, end-start)
		for _, p := range points[start:end] {
			ps, err := toPoint(p)
			if err != nil {
				return err
			}
			batch = append(batch, ps)
		}
		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Wait:           &wait,
			Points:         batch,
		}); err != nil {
			return fmt.Errorf("qdrant upsert failed: %w", err)
		}
	}
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return errors.New("qdrant: embedding has no dimensions")
	}
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant: check collection: %w", err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", s.collection, err)
	}
	return nil
}

// PointID returns the Qdrant point id used for a document id.
func PointID(documentID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(documentID)).String()
}

func toPoint(p driven.VectorPoint) (*qdrant.PointStruct, error) {
	if _, ok := p.Payload[payloadShopID]; !ok {
		return nil, fmt.Errorf("qdrant: point %s has no %s", p.DocumentID, payloadShopID)
	}
	raw := make(map[string]any, len(p.Payload)+1)
	for k, v := range p.Payload {
		raw[k] = normalise(v)
	}
	raw[payloadDocumentID] = p.DocumentID

	payload, err := qdrant.TryValueMap(raw)
	if err != nil {
		return nil, fmt.Errorf("qdrant: payload of %s: %w", p.DocumentID, err)
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewID(PointID(p.DocumentID)),
		Vectors: qdrant.NewVectors(p.Embedding...),
		Payload: payload,
	}, nil
}

// normalise maps payload values onto types the value converter accepts.
func normalise(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case string, bool, int64, float64, nil:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Close implements driven.VectorStore.
func (s *Store) Close() error {
	return s.client.Close()
}

// buildFilter converts exact-match filters into a Qdrant Must filter.
func buildFilter(filters map[string]any) *qdrant.Filter {
	if len(filters) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]*qdrant.Condition, 0, len(keys))
	for _, k := range keys {
		conditions = append(conditions, buildMatchCondition(k, filters[k]))
	}
	return &qdrant.Filter{Must: conditions}
}

// buildMatchCondition creates a match condition for a key-value pair.
func buildMatchCondition(key string, value any) *qdrant.Condition {
	var match *qdrant.Match

	switch v := value.(type) {
	case string:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: v}}
	case int:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Integer{Integer: int64(v)}}
	case int64:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Integer{Integer: v}}
	case float64:
		if v == math.Trunc(v) {
			match = &qdrant.Match{MatchValue: &qdrant.Match_Integer{Integer: int64(v)}}
		} else {
			match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: strconv.FormatFloat(v, 'f', -1, 64)}}
		}
	case bool:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Boolean{Boolean: v}}
	default:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: fmt.Sprintf("%v", v)}}
	}

	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key:   key,
				Match: match,
			},
		},
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
