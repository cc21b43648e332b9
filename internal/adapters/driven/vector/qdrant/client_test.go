package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

type fakeClient struct {
	points     []*qdrant.ScoredPoint
	queryErr   error
	lastQuery  *qdrant.QueryPoints
	exists     bool
	created    *qdrant.CreateCollection
	upserts    []*qdrant.UpsertPoints
	upsertErr  error
	closeCalls int
}

func (f *fakeClient) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.lastQuery = req
	return f.points, f.queryErr
}

func (f *fakeClient) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, f.upsertErr
}

func (f *fakeClient) CollectionExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeClient) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = req
	f.exists = true
	return nil
}

func (f *fakeClient) Close() error {
	f.closeCalls++
	return nil
}

func scored(shopID string, score float32) *qdrant.ScoredPoint {
	return &qdrant.ScoredPoint{
		Score:   score,
		Payload: map[string]*qdrant.Value{payloadShopID: qdrant.NewValueString(shopID)},
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Collection: "c"})
	require.Error(t, err)

	_, err = New(Config{URL: "localhost:6334"})
	require.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		raw     string
		host    string
		port    int
		tls     bool
		wantErr bool
	}{
		{"localhost", "localhost", 6334, false, false},
		{"localhost:7000", "localhost", 7000, false, false},
		{"https://xyz.cloud.qdrant.io:6334", "xyz.cloud.qdrant.io", 6334, true, false},
		{"http://qdrant", "qdrant", 6334, false, false},
		{"localhost:abc", "", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			host, port, tls, err := parseAddress(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.tls, tls)
		})
	}
}

func TestStore_Search_CollapsesByShop(t *testing.T) {
	fake := &fakeClient{points: []*qdrant.ScoredPoint{
		scored("1", 0.9),
		scored("2", 0.7),
		scored("1", 0.8),
		scored("3", 1.2),
		scored("", 0.99),
		scored("4", -0.1),
	}}
	s := &Store{client: fake, collection: "shops"}

	results, err := s.Search(context.Background(), []float32{0.1, 0.2}, 3, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "3", results[0].ShopID)
	assert.Equal(t, 1.0, results[0].Score, "clamped")
	assert.Equal(t, "1", results[1].ShopID)
	assert.InDelta(t, 0.9, results[1].Score, 1e-6)
	assert.Equal(t, "2", results[2].ShopID)

	require.NotNil(t, fake.lastQuery.Limit)
	assert.Equal(t, uint64(12), *fake.lastQuery.Limit)
	assert.Equal(t, "shops", fake.lastQuery.CollectionName)
	assert.Nil(t, fake.lastQuery.Filter)
}

func TestStore_Search_Filters(t *testing.T) {
	fake := &fakeClient{}
	s := &Store{client: fake, collection: "shops"}

	_, err := s.Search(context.Background(), []float32{1}, 5, map[string]any{
		"type":       "menu",
		"is_popular": true,
		"price":      float64(4000),
	})

	require.NoError(t, err)
	require.NotNil(t, fake.lastQuery.Filter)
	must := fake.lastQuery.Filter.Must
	require.Len(t, must, 3)
	assert.Equal(t, "is_popular", must[0].GetField().Key)
	assert.True(t, must[0].GetField().Match.GetBoolean())
	assert.Equal(t, "price", must[1].GetField().Key)
	assert.Equal(t, int64(4000), must[1].GetField().Match.GetInteger())
	assert.Equal(t, "menu", must[2].GetField().Match.GetKeyword())
}

func TestStore_Search_EmptyInputs(t *testing.T) {
	fake := &fakeClient{}
	s := &Store{client: fake, collection: "shops"}

	results, err := s.Search(context.Background(), nil, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(context.Background(), []float32{1}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Nil(t, fake.lastQuery)
}

func TestStore_Search_Error(t *testing.T) {
	s := &Store{client: &fakeClient{queryErr: errors.New("unavailable")}, collection: "shops"}

	_, err := s.Search(context.Background(), []float32{1}, 5, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "qdrant search failed")
}

func TestStore_Upsert_CreatesCollectionAndBatches(t *testing.T) {
	fake := &fakeClient{}
	s := &Store{client: fake, collection: "shops"}
	points := make([]driven.VectorPoint, upsertBatchSize+3)
	for i := range points {
		points[i] = driven.VectorPoint{
			DocumentID: "menu_" + string(rune('a'+i%26)),
			Embedding:  []float32{1, 2, 3},
			Payload:    map[string]any{"shop_id": "1", "price": 4000, "is_popular": true},
		}
	}

	require.NoError(t, s.Upsert(context.Background(), points))

	require.NotNil(t, fake.created)
	assert.Equal(t, uint64(3), fake.created.VectorsConfig.GetParams().Size)
	assert.Equal(t, qdrant.Distance_Cosine, fake.created.VectorsConfig.GetParams().Distance)
	require.Len(t, fake.upserts, 2)
	assert.Len(t, fake.upserts[0].Points, upsertBatchSize)
	assert.Len(t, fake.upserts[1].Points, 3)

	first := fake.upserts[0].Points[0]
	assert.Equal(t, PointID("menu_a"), first.Id.GetUuid())
	assert.Equal(t, "menu_a", first.Payload[payloadDocumentID].GetStringValue())
	assert.Equal(t, int64(4000), first.Payload["price"].GetIntegerValue())
}

func TestStore_Upsert_ExistingCollection(t *testing.T) {
	fake := &fakeClient{exists: true}
	s := &Store{client: fake, collection: "shops"}

	err := s.Upsert(context.Background(), []driven.VectorPoint{
		{DocumentID: "shop_1", Embedding: []float32{1}, Payload: map[string]any{"shop_id": "1"}},
	})

	require.NoError(t, err)
	assert.Nil(t, fake.created)
}

func TestStore_Upsert_RequiresShopID(t *testing.T) {
	s := &Store{client: &fakeClient{exists: true}, collection: "shops"}

	err := s.Upsert(context.Background(), []driven.VectorPoint{
		{DocumentID: "shop_1", Embedding: []float32{1}, Payload: map[string]any{}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no shop_id")
}

func TestStore_Upsert_Empty(t *testing.T) {
	fake := &fakeClient{}
	s := &Store{client: fake, collection: "shops"}

	require.NoError(t, s.Upsert(context.Background(), nil))
	assert.Empty(t, fake.upserts)
}

func TestPointID_Stable(t *testing.T) {
	assert.Equal(t, PointID("menu_1"), PointID("menu_1"))
	assert.NotEqual(t, PointID("menu_1"), PointID("menu_2"))
}

func TestStore_Close(t *testing.T) {
	fake := &fakeClient{}
	s := &Store{client: fake}

	require.NoError(t, s.Close())
	assert.Equal(t, 1, fake.closeCalls)
}
