package mcp

import (
	"context"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	result  domain.TurnResult
	lastReq domain.TurnRequest
}

func (m *mockChatService) ProcessTurn(_ context.Context, req domain.TurnRequest) domain.TurnResult {
	m.lastReq = req
	return m.result
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastCtx   domain.SearchContext
	lastTopK  int
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
	query string,
	sc domain.SearchContext,
	topK int,
) ([]domain.SearchResult, error) {
	m.lastQuery, m.lastCtx, m.lastTopK = query, sc, topK
	return m.results, m.err
}

func (m *mockSearchService) Rebuild(_ context.Context, _ domain.Corpus) error {
	return m.err
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	shops []domain.Shop
	docs  map[string]domain.Document
}

func (m *mockCorpusService) Reload(_ context.Context) (driving.CorpusSummary, error) {
	return driving.CorpusSummary{Shops: len(m.shops)}, nil
}

func (m *mockCorpusService) Summary() driving.CorpusSummary {
	return driving.CorpusSummary{Shops: len(m.shops)}
}

func (m *mockCorpusService) Shops() []domain.Shop {
	return m.shops
}

func (m *mockCorpusService) Shop(id string) (*domain.Shop, error) {
	for i := range m.shops {
		if m.shops[i].ID == id {
			return &m.shops[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCorpusService) Document(id string) (domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockCorpusService) Export(_ context.Context, _ driven.CorpusWriter) error {
	return nil
}

// mockSessionService is a mock implementation of driving.SessionService.
// Only ExportSession returns data.
type mockSessionService struct {
	snapshots map[string]*domain.SessionSnapshot
	err       error
}

func (m *mockSessionService) CreateSession(_ context.Context, _ string) (*domain.Session, error) {
	return nil, m.err
}

func (m *mockSessionService) GetSession(_ context.Context, _ string) (*domain.Session, error) {
	return nil, m.err
}

func (m *mockSessionService) UpdateState(_ context.Context, _ string, _ domain.StateUpdate) (bool, error) {
	return false, m.err
}

func (m *mockSessionService) AddMessage(
	_ context.Context,
	_ string,
	_ domain.Role,
	_ string,
	_ map[string]any,
) (bool, error) {
	return false, m.err
}

func (m *mockSessionService) IsActive(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockSessionService) SweepExpired(_ context.Context) (int, error) {
	return 0, m.err
}

func (m *mockSessionService) ActiveCount(_ context.Context) (int, error) {
	return len(m.snapshots), m.err
}

func (m *mockSessionService) ExportSession(_ context.Context, id string) (*domain.SessionSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots[id], nil
}

func (m *mockSessionService) History(_ context.Context, _ string, _ int) ([]domain.Message, error) {
	return nil, m.err
}

func (m *mockSessionService) ClearSession(_ context.Context, _ string) (bool, error) {
	return false, m.err
}
