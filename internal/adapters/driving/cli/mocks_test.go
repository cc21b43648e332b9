package cli

import (
	"context"
	"time"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
)

var testTime = time.Date(2025, 8, 6, 12, 30, 0, 0, time.UTC)

func testShop() domain.Shop {
	return domain.Shop{
		ID:        "1",
		Name:      "맛있는 치킨",
		Category:  "치킨",
		Address:   "서울 강남구",
		OpenHour:  "11:00",
		CloseHour: "22:00",
		Menus: []domain.Menu{
			{ID: "7", ShopID: "1", Name: "후라이드", Price: 15000},
			{ID: "8", ShopID: "1", Name: "양념", Price: 17000},
		},
	}
}

func testResults() []domain.SearchResult {
	shop := testShop()
	return []domain.SearchResult{{
		ShopID:          shop.ID,
		ShopName:        shop.Name,
		Category:        shop.Category,
		Score:           0.87,
		Menus:           shop.Menus,
		AffordableMenus: shop.Menus[:1],
	}}
}

type mockChatService struct {
	requests []domain.TurnRequest
}

func (m *mockChatService) ProcessTurn(_ context.Context, req domain.TurnRequest) domain.TurnResult {
	m.requests = append(m.requests, req)
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "session-1"
	}
	return domain.TurnResult{
		ResponseText:    "치킨 어때?",
		SessionID:       sessionID,
		Recommendations: testResults(),
		Intent:          domain.IntentFoodRequest,
		Action:          domain.ActionRecommend,
	}
}

type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastCtx  domain.SearchContext
	lastTopK int
}

func (m *mockSearchService) KeywordSearch(_ context.Context, _ string, _ int) ([]domain.ScoredShop, error) {
	return nil, m.err
}

func (m *mockSearchService) VectorSearch(_ context.Context, _ string, _ int) ([]domain.ScoredShop, error) {
	return nil, m.err
}

func (m *mockSearchService) HybridSearch(_ context.Context, _ string, _ domain.HybridOptions) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockSearchService) SearchByContext(
	_ context.Context,
	_ string,
	sc domain.SearchContext,
	topK int,
) ([]domain.SearchResult, error) {
	m.lastCtx, m.lastTopK = sc, topK
	return m.results, m.err
}

func (m *mockSearchService) Rebuild(_ context.Context, _ domain.Corpus) error {
	return m.err
}

type mockSessionService struct {
	sessions map[string]*domain.Session
	cleared  []string
}

func newMockSessionService() *mockSessionService {
	sess := domain.NewSession("session-1", "user-1", testTime)
	sess.AddMessage(domain.RoleUser, "치킨 먹고 싶어", nil, testTime)
	sess.AddMessage(domain.RoleBot, "치킨 어때?", nil, testTime.Add(time.Second))
	return &mockSessionService{sessions: map[string]*domain.Session{sess.ID: sess}}
}

func (m *mockSessionService) CreateSession(_ context.Context, userID string) (*domain.Session, error) {
	return domain.NewSession("new", userID, testTime), nil
}

func (m *mockSessionService) GetSession(_ context.Context, id string) (*domain.Session, error) {
	return m.sessions[id].Clone(), nil
}

func (m *mockSessionService) UpdateState(_ context.Context, id string, _ domain.StateUpdate) (bool, error) {
	return m.sessions[id] != nil, nil
}

func (m *mockSessionService) AddMessage(
	_ context.Context,
	id string,
	_ domain.Role,
	_ string,
	_ map[string]any,
) (bool, error) {
	return m.sessions[id] != nil, nil
}

func (m *mockSessionService) IsActive(_ context.Context, id string) (bool, error) {
	return m.sessions[id] != nil, nil
}

func (m *mockSessionService) SweepExpired(_ context.Context) (int, error) {
	return 0, nil
}

func (m *mockSessionService) ActiveCount(_ context.Context) (int, error) {
	return len(m.sessions), nil
}

func (m *mockSessionService) ExportSession(_ context.Context, id string) (*domain.SessionSnapshot, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return sess.Snapshot(), nil
}

func (m *mockSessionService) History(_ context.Context, id string, n int) ([]domain.Message, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	history := sess.History
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	return history, nil
}

func (m *mockSessionService) ClearSession(_ context.Context, id string) (bool, error) {
	m.cleared = append(m.cleared, id)
	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

type mockCorpusService struct {
	reloads  int
	exported driven.CorpusWriter
}

func (m *mockCorpusService) Reload(_ context.Context) (driving.CorpusSummary, error) {
	m.reloads++
	return m.Summary(), nil
}

func (m *mockCorpusService) Summary() driving.CorpusSummary {
	return driving.CorpusSummary{Shops: 1, Menus: 2, Reviews: 3, Coupons: 1, Hash: "abc"}
}

func (m *mockCorpusService) Shops() []domain.Shop {
	return []domain.Shop{testShop()}
}

func (m *mockCorpusService) Shop(id string) (*domain.Shop, error) {
	if id != "1" {
		return nil, domain.ErrNotFound
	}
	shop := testShop()
	return &shop, nil
}

func (m *mockCorpusService) Document(id string) (domain.Document, error) {
	if id != "shop_1" {
		return nil, domain.ErrNotFound
	}
	return domain.ShopDocument{Shop: testShop()}, nil
}

func (m *mockCorpusService) Export(_ context.Context, w driven.CorpusWriter) error {
	m.exported = w
	return nil
}

type mockCacheService struct {
	stats   domain.CacheStats
	cleared bool
}

func (m *mockCacheService) Get(_ string, _ map[string]any, _ string) ([]domain.SearchResult, bool) {
	return nil, false
}

func (m *mockCacheService) Set(_ string, _ []domain.SearchResult, _ map[string]any, _ string) {}

func (m *mockCacheService) Clear() error {
	m.cleared = true
	return nil
}

func (m *mockCacheService) Stats() domain.CacheStats {
	return m.stats
}

type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetSearchMode(mode domain.SearchMode) error {
	m.settings.Search.Mode = mode
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.settings.Validate()
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

type mockVectorSyncer struct {
	n int
}

func (m *mockVectorSyncer) SyncVectors(_ context.Context) (int, error) {
	return m.n, nil
}

type mockCorpusWriter struct{}

func (mockCorpusWriter) SaveCorpus(_ context.Context, _ domain.Corpus) error {
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	chat     *mockChatService
	search   *mockSearchService
	sessions *mockSessionService
	corpus   *mockCorpusService
	cache    *mockCacheService
	settings *mockSettingsService
	vectors  *mockVectorSyncer
}

var installed *testServices

// setupTestServices installs mock services and returns a cleanup function
// that removes them and resets flag variables.
func setupTestServices() func() {
	installed = &testServices{
		chat:     &mockChatService{},
		search:   &mockSearchService{results: testResults()},
		sessions: newMockSessionService(),
		corpus:   &mockCorpusService{},
		cache:    &mockCacheService{stats: domain.CacheStats{Hits: 3, Misses: 1, HitRate: 0.75, MemoryItems: 2, DiskFiles: 2}},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
		vectors:  &mockVectorSyncer{n: 42},
	}
	SetServices(&Services{
		Chat:          installed.chat,
		Search:        installed.search,
		Sessions:      installed.sessions,
		Corpus:        installed.corpus,
		Cache:         installed.cache,
		Settings:      installed.settings,
		Vectors:       installed.vectors,
		CorpusArchive: mockCorpusWriter{},
	})

	return func() {
		SetServices(&Services{})
		installed = nil
		resetFlags()
	}
}

func resetFlags() {
	searchLimit, searchBudget, searchLocation, searchTime, searchJSON = 5, 0, "", "", false
	chatSessionID, chatUserID, askJSON = "", "", false
	historyLimit = 0
	cacheJSON = false
	rebuildVectors, shopsJSON = false, false
}
