package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockEmbeddingService hashes words into a small bag-of-words vector, so
// identical texts embed identically and overlapping texts land close.
type mockEmbeddingService struct {
	mu       sync.Mutex
	dims     int
	model    string
	err      error
	batches  [][]string
	queries  []string
	short    bool // return one embedding too few
	pingErr  error
	closeErr error
}

func newMockEmbedder() *mockEmbeddingService {
	return &mockEmbeddingService{dims: 32, model: "mock-embed"}
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, m.dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(m.dims)]++
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return m.dims }
func (m *mockEmbeddingService) ModelName() string          { return m.model }
func (m *mockEmbeddingService) Ping(context.Context) error { return m.pingErr }
func (m *mockEmbeddingService) Close() error               { return m.closeErr }

// mockLLMService records the messages it was asked to answer.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	calls    [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (m *mockLLMService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return m.response, m.err
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, messages)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockIndexService returns canned search results and records requests.
type mockIndexService struct {
	mu        sync.Mutex
	results   []domain.QueryResult
	searchErr error
	requests  []driving.SearchOptions
}

func (m *mockIndexService) Index(_ context.Context, docs []domain.Document) (int, error) {
	return len(docs), nil
}

func (m *mockIndexService) Search(
	_ context.Context, _ string, opts driving.SearchOptions,
) ([]domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, opts)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if opts.K < len(m.results) {
		return m.results[:opts.K], nil
	}
	return m.results, nil
}

func (m *mockIndexService) Stats(context.Context) (domain.IndexStats, error) {
	return domain.IndexStats{}, nil
}

func (m *mockIndexService) Clear(context.Context) error { return nil }

func (m *mockIndexService) searchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockDatasetReader returns fixed rows.
type mockDatasetReader struct {
	nutrition    []domain.Row
	surveys      []domain.Row
	nutritionErr error
	surveyErr    error
}

func (m *mockDatasetReader) ReadNutrition(context.Context) ([]domain.Row, error) {
	return m.nutrition, m.nutritionErr
}

func (m *mockDatasetReader) ReadSurveys(context.Context) ([]domain.Row, error) {
	return m.surveys, m.surveyErr
}

func (m *mockDatasetReader) Paths() (nutrition, surveys string) {
	return "nutrition.csv", "surveys.csv"
}

// mockAIValidator returns fixed errors.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
}

func (m *mockAIValidator) ValidateEmbedding(*domain.EmbeddingSettings) error { return m.embeddingErr }
func (m *mockAIValidator) ValidateLLM(*domain.LLMSettings) error             { return m.llmErr }

// --- Fixtures ---

func nutritionRow(indicator, year, value string) domain.Row {
	return domain.Row{
		"GHO (DISPLAY)":  indicator,
		"YEAR (DISPLAY)": year,
		"Value":          value,
	}
}

func surveyRow(title, authority, start, end string) domain.Row {
	return domain.Row{
		"titl":            title,
		"authenty":        authority,
		"data_coll_start": start,
		"data_coll_end":   end,
	}
}

func nutritionResult(id, text string, year int) domain.QueryResult {
	return domain.QueryResult{
		ID:   id,
		Text: text,
		Metadata: domain.Metadata{
			domain.MetaSource: domain.SourceNutrition,
			domain.MetaYear:   year,
			domain.MetaType:   domain.DocumentTypeNutrition.String(),
		},
	}
}
