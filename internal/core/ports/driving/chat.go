package driving

import (
	"context"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// ChatService answers questions about Rwanda from NISR data.
type ChatService interface {
	// Answer runs the scope check, retrieval and generation for one question.
	// Failures are reported inside the result; see domain.ChatResult.Failed.
	Answer(ctx context.Context, query string, opts AnswerOptions) domain.ChatResult

	// IsOutOfScope reports whether the scope filter would refuse the question.
	IsOutOfScope(query string) bool
}

// AnswerOptions tunes a single Answer call.
type AnswerOptions struct {
	// MaxContextDocs is the number of documents to retrieve.
	// Zero selects the configured default.
	MaxContextDocs int
}
