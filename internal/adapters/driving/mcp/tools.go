package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// defaultSearchLimit is used when the search tool is called without a limit.
const defaultSearchLimit = 5

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query          string `json:"query" jsonschema:"the question about Rwanda nutrition, health or NISR surveys"`
	MaxContextDocs int    `json:"max_context_docs,omitempty" jsonschema:"number of documents to use as context, 1 to 10 (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer        string          `json:"answer"`
	Sources       []domain.Source `json:"sources"`
	ContextUsed   bool            `json:"context_used"`
	IsRelevant    bool            `json:"is_relevant"`
	RetrievedDocs int             `json:"retrieved_docs"`
	Outcome       string          `json:"outcome"`
	Error         string          `json:"error,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar NISR records for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, 1 to 10 (default 5)"`
	Type  string `json:"type,omitempty" jsonschema:"restrict to nutrition_data or survey_metadata"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string          `json:"document_id"`
	Text       string          `json:"text"`
	Metadata   domain.Metadata `json:"metadata"`
	Distance   float64         `json:"distance"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about Rwanda using official NISR datasets, with sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find NISR nutrition indicators and survey records similar to a query",
	}, s.handleSearch)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AskOutput{}, ErrEmptyQuery
	}
	if err := domain.ValidateQuery(input.Query); err != nil {
		return nil, AskOutput{}, err
	}
	if input.MaxContextDocs != 0 &&
		(input.MaxContextDocs < domain.MinContextDocs || input.MaxContextDocs > domain.MaxContextDocs) {
		return nil, AskOutput{}, fmt.Errorf("max_context_docs must be between %d and %d",
			domain.MinContextDocs, domain.MaxContextDocs)
	}

	result := s.ports.Chat.Answer(ctx, input.Query, driving.AnswerOptions{
		MaxContextDocs: input.MaxContextDocs,
	})
	if result.Outcome == domain.OutcomeRetrievalFailed {
		return nil, AskOutput{}, fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, result.Error)
	}

	output := AskOutput{
		Answer:      result.Answer,
		Sources:     result.Sources,
		ContextUsed: result.ContextUsed,
		IsRelevant:  result.IsRelevant,
		Outcome:     result.Outcome.String(),
		Error:       result.Error,
	}
	if output.Sources == nil {
		output.Sources = []domain.Source{}
	}
	if result.RetrievedDocs != nil {
		output.RetrievedDocs = *result.RetrievedDocs
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, ErrEmptyQuery
	}
	if err := domain.ValidateQuery(input.Query); err != nil {
		return nil, SearchOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	opts := driving.SearchOptions{K: limit}
	if input.Type != "" {
		if !domain.DocumentType(input.Type).IsValid() {
			return nil, SearchOutput{}, fmt.Errorf("unknown document type %q", input.Type)
		}
		opts.Filter = map[string]string{domain.MetaType: input.Type}
	}

	results, err := s.ports.Index.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].ID,
			Text:       results[i].Text,
			Metadata:   results[i].Metadata,
			Distance:   results[i].Distance,
		}
	}

	return nil, output, nil
}
