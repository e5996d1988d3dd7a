package httpapi

import (
	"context"
	"sync"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	mu      sync.Mutex
	result  domain.ChatResult
	queries []string
	opts    []driving.AnswerOptions
}

func (m *mockChatService) Answer(_ context.Context, query string, opts driving.AnswerOptions) domain.ChatResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.opts = append(m.opts, opts)
	return m.result
}

func (m *mockChatService) IsOutOfScope(_ string) bool { return false }

func (m *mockChatService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats domain.IndexStats
	err   error
}

func (m *mockIndexService) Index(_ context.Context, docs []domain.Document) (int, error) {
	return len(docs), m.err
}

func (m *mockIndexService) Search(_ context.Context, _ string, _ driving.SearchOptions) ([]domain.QueryResult, error) {
	return nil, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Clear(_ context.Context) error { return m.err }

// mockDatasetService is a mock implementation of driving.DatasetService.
type mockDatasetService struct {
	summary domain.DatasetSummary
	err     error
}

func (m *mockDatasetService) Documents(_ context.Context) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockDatasetService) Summary(_ context.Context) (domain.DatasetSummary, error) {
	return m.summary, m.err
}
