package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	result  domain.ChatResult
	queries []string
	opts    driving.AnswerOptions
}

func (m *mockChatService) Answer(_ context.Context, query string, opts driving.AnswerOptions) domain.ChatResult {
	m.queries = append(m.queries, query)
	m.opts = opts
	return m.result
}

func (m *mockChatService) IsOutOfScope(_ string) bool {
	return false
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	results  []domain.QueryResult
	stats    domain.IndexStats
	indexed  []domain.Document
	searches []string
	opts     driving.SearchOptions
	cleared  int
	err      error
}

func (m *mockIndexService) Index(_ context.Context, docs []domain.Document) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.indexed = append(m.indexed, docs...)
	return len(docs), nil
}

func (m *mockIndexService) Search(
	_ context.Context,
	query string,
	opts driving.SearchOptions,
) ([]domain.QueryResult, error) {
	m.searches = append(m.searches, query)
	m.opts = opts
	return m.results, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Clear(_ context.Context) error {
	m.cleared++
	return m.err
}

// mockDatasetService is a mock implementation of driving.DatasetService.
type mockDatasetService struct {
	docs    []domain.Document
	summary domain.DatasetSummary
	err     error
}

func (m *mockDatasetService) Documents(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDatasetService) Summary(_ context.Context) (domain.DatasetSummary, error) {
	return m.summary, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	saved       *domain.AppSettings
	embedding   domain.AIProvider
	embedModel  string
	llm         domain.AIProvider
	llmModel    string
	llmKey      string
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm, m.llmModel, m.llmKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, _ string) error {
	m.embedding, m.embedModel = provider, model
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return nil
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return nil
}

// factoryCalls counts appFactory calls since the last setupTestApp.
var factoryCalls int

// newTestApp returns an app wired to fresh mocks.
func newTestApp() (*app, *mockChatService, *mockIndexService, *mockDatasetService) {
	chat := &mockChatService{}
	index := &mockIndexService{}
	dataset := &mockDatasetService{}
	settings := domain.DefaultAppSettings()
	return &app{
		level:    levelAnswers,
		settings: &settings,
		dataset:  dataset,
		index:    index,
		chat:     chat,
	}, chat, index, dataset
}

// setupTestApp makes loadApp return a, or fail when a is nil, and resets
// command flags. The returned function restores the previous state.
func setupTestApp(t *testing.T, a *app) func() {
	t.Helper()

	prevSettings, prevFactory, prevCurrent := settingsService, appFactory, current
	settingsService = newMockSettingsService()
	current = nil
	factoryCalls = 0
	appFactory = func(_ context.Context, _ *domain.AppSettings, _ appLevel) (*app, error) {
		factoryCalls++
		if a == nil {
			return nil, errors.New("no app in test")
		}
		return a, nil
	}
	resetFlags(t)

	return func() {
		settingsService, appFactory, current = prevSettings, prevFactory, prevCurrent
		resetFlags(t)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// resetFlags restores flag variables to their defaults; cobra keeps
// values from earlier Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()

	askDocs, askJSON = 0, false
	chatDocs, chatPlain = 0, false
	indexClear, indexWatch = false, false
	searchLimit, searchType, searchJSON = 5, "", false
	statsJSON = false
	servePort = 0
	cfgFile, envFile, noConfig, verbose = "", ".env", false, false

	if err := mcpServeCmd.Flags().Set("port", "0"); err != nil {
		t.Fatalf("resetting mcp port: %v", err)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
