package mcp

import (
	"context"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	result domain.ChatResult
	query  string
	opts   driving.AnswerOptions
	calls  int
}

func (m *mockChatService) Answer(_ context.Context, query string, opts driving.AnswerOptions) domain.ChatResult {
	m.calls++
	m.query = query
	m.opts = opts
	return m.result
}

func (m *mockChatService) IsOutOfScope(_ string) bool {
	return false
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	results []domain.QueryResult
	stats   domain.IndexStats
	opts    driving.SearchOptions
	err     error
}

func (m *mockIndexService) Index(_ context.Context, docs []domain.Document) (int, error) {
	return len(docs), m.err
}

func (m *mockIndexService) Search(
	_ context.Context,
	_ string,
	opts driving.SearchOptions,
) ([]domain.QueryResult, error) {
	m.opts = opts
	return m.results, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Clear(_ context.Context) error {
	return m.err
}

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
