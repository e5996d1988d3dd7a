package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// contextHeader opens the grounding block passed to the model.
const contextHeader = "NISR Rwanda Data Context:\n"

// ChatConfig holds generation parameters for the answer composer.
type ChatConfig struct {
	// DefaultContextDocs is used when a call does not set MaxContextDocs.
	DefaultContextDocs int

	// Temperature is passed to the model on every call.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int
}

// ChatService answers questions with the scope gate, retrieval and one
// grounded generation call. It holds no per-question state.
type ChatService struct {
	scope   *ScopeFilter
	index   driving.IndexService
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     ChatConfig
}

// NewChatService creates a new answer composer.
func NewChatService(
	scope *ScopeFilter,
	index driving.IndexService,
	llm driven.LLMService,
	cfg ChatConfig,
) *ChatService {
	if cfg.DefaultContextDocs == 0 {
		cfg.DefaultContextDocs = domain.DefaultContextDocs
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}
	return &ChatService{
		scope: scope,
		index: index,
		llm:   llm,
		cfg:   cfg,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the built-in prompts are used.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// IsOutOfScope reports whether the scope filter would refuse the question.
func (s *ChatService) IsOutOfScope(query string) bool {
	return s.scope.IsOutOfScope(query)
}

// Answer processes one question and returns a structured result.
func (s *ChatService) Answer(ctx context.Context, query string, opts driving.AnswerOptions) domain.ChatResult {
	logger.Section("Answer")
	query = strings.TrimSpace(query)
	logger.Debug("Question: %q", query)

	decision := s.scope.Evaluate(query)
	if decision.OutOfScope {
		logger.Info("Refused by scope rule %s (term %q)", decision.Rule, decision.Term)
		return scopeRejected()
	}

	k := s.contextDocs(opts.MaxContextDocs)
	docs, err := s.index.Search(ctx, query, driving.SearchOptions{K: k})
	if err != nil {
		logger.Error("Retrieval failed: %v", err)
		return retrievalFailed(err)
	}
	if len(docs) == 0 {
		logger.Info("No documents retrieved")
		return noContext()
	}
	logger.Debug("Retrieved %d documents", len(docs))

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: s.loadPrompt(driven.PromptAnswerSystem, domain.DefaultAnswerSystemPrompt)},
		{Role: driven.RoleUser, Content: fmt.Sprintf(
			s.loadPrompt(driven.PromptAnswerUser, domain.DefaultAnswerUserPrompt),
			FormatContext(docs), query,
		)},
	}

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return generationFailed(err)
	}

	n := len(docs)
	return domain.ChatResult{
		Answer:        answer,
		Sources:       SourcesFor(docs),
		ContextUsed:   true,
		IsRelevant:    true,
		RetrievedDocs: &n,
		Outcome:       domain.OutcomeAnswered,
	}
}

// contextDocs resolves the per-call document count.
func (s *ChatService) contextDocs(requested int) int {
	k := requested
	if k == 0 {
		k = s.cfg.DefaultContextDocs
	}
	return max(domain.MinContextDocs, min(k, domain.MaxContextDocs))
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *ChatService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// FormatContext renders retrieved documents as the grounding block.
func FormatContext(docs []domain.QueryResult) string {
	parts := make([]string, 0, len(docs)+1)
	parts = append(parts, contextHeader)
	for i, d := range docs {
		parts = append(parts, fmt.Sprintf("\n[Document %d]\nSource: %s\nYear: %s\nData: %s\n",
			i+1, sourceName(d.Metadata), sourceYear(d.Metadata), d.Text))
	}
	return strings.Join(parts, "\n")
}

// SourcesFor cites each retrieved document, in order.
func SourcesFor(docs []domain.QueryResult) []domain.Source {
	sources := make([]domain.Source, 0, len(docs))
	for _, d := range docs {
		typ := d.Metadata.String(domain.MetaType)
		if typ == "" {
			typ = "unknown"
		}
		sources = append(sources, domain.Source{
			Source: sourceName(d.Metadata),
			Year:   sourceYear(d.Metadata),
			Type:   typ,
		})
	}
	return sources
}

func sourceName(m domain.Metadata) string {
	if m.Has(domain.MetaSource) {
		return m.String(domain.MetaSource)
	}
	return "Unknown"
}

// sourceYear prefers year, then year_start, then N/A.
func sourceYear(m domain.Metadata) string {
	switch {
	case m.Has(domain.MetaYear):
		return m.String(domain.MetaYear)
	case m.Has(domain.MetaYearStart):
		return m.String(domain.MetaYearStart)
	default:
		return "N/A"
	}
}

func scopeRejected() domain.ChatResult {
	return domain.ChatResult{
		Answer:     domain.RefusalAnswer,
		Sources:    []domain.Source{},
		IsRelevant: false,
		Outcome:    domain.OutcomeScopeRejected,
	}
}

func noContext() domain.ChatResult {
	return domain.ChatResult{
		Answer:     domain.NoDataAnswer,
		Sources:    []domain.Source{},
		IsRelevant: true,
		Outcome:    domain.OutcomeNoContext,
	}
}

func generationFailed(err error) domain.ChatResult {
	return domain.ChatResult{
		Answer:     domain.ErrorAnswerPrefix + err.Error(),
		Sources:    []domain.Source{},
		IsRelevant: true,
		Error:      err.Error(),
		Outcome:    domain.OutcomeGenerationFailed,
	}
}

func retrievalFailed(err error) domain.ChatResult {
	return domain.ChatResult{
		Answer:     domain.ErrorAnswerPrefix + err.Error(),
		Sources:    []domain.Source{},
		IsRelevant: true,
		Error:      err.Error(),
		Outcome:    domain.OutcomeRetrievalFailed,
	}
}
