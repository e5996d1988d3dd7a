package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Outcome is the terminal state of a single question.
type Outcome string

// Possible outcomes. Every question ends in exactly one of them.
const (
	// OutcomeScopeRejected means the scope filter refused the question.
	// No retrieval or generation took place.
	OutcomeScopeRejected Outcome = "scope_rejected"

	// OutcomeNoContext means the search succeeded but found nothing to ground an answer.
	OutcomeNoContext Outcome = "no_context"

	// OutcomeAnswered means the model produced a grounded answer.
	OutcomeAnswered Outcome = "answered"

	// OutcomeGenerationFailed means the model call failed.
	OutcomeGenerationFailed Outcome = "generation_failed"

	// OutcomeRetrievalFailed means the vector store could not be searched.
	// It is a failure of the service, unlike OutcomeNoContext.
	OutcomeRetrievalFailed Outcome = "retrieval_failed"
)

// String returns the string representation.
func (o Outcome) String() string {
	return string(o)
}

// Fixed user-facing answers.
const (
	// RefusalAnswer is returned for questions outside the NISR Rwanda domain.
	RefusalAnswer = "I can only answer questions about Rwanda based on official NISR " +
		"(National Institute of Statistics of Rwanda) datasets. " +
		"Please ask about Rwanda's nutrition, health, or survey data."

	// NoDataAnswer is returned when nothing relevant was retrieved.
	NoDataAnswer = "I don't have NISR data to answer that specific question. " +
		"My responses are based on official NISR datasets covering nutrition " +
		"indicators and survey metadata from Rwanda."

	// ErrorAnswerPrefix starts the answer text when retrieval or generation fails.
	ErrorAnswerPrefix = "Error processing request: "
)

// Source cites one retrieved document in an answer.
type Source struct {
	Source string `json:"source"`
	Year   string `json:"year"`
	Type   string `json:"type"`
}

// ChatResult is the structured reply to a question.
type ChatResult struct {
	// Answer is the text shown to the user.
	Answer string `json:"answer"`

	// Sources cites each document used as context, in retrieval order.
	Sources []Source `json:"sources"`

	// ContextUsed is true only when a grounded answer was generated.
	ContextUsed bool `json:"context_used"`

	// IsRelevant is false only when the scope filter rejected the question.
	IsRelevant bool `json:"is_relevant"`

	// RetrievedDocs is the number of context documents, set on success.
	RetrievedDocs *int `json:"retrieved_docs,omitempty"`

	// Error carries the failure description when retrieval or generation failed.
	Error string `json:"error,omitempty"`

	// Outcome records which terminal state produced this result.
	Outcome Outcome `json:"outcome"`
}

// Failed reports whether the result stems from a service failure rather
// than a normal answer, refusal or empty retrieval.
func (r ChatResult) Failed() bool {
	return r.Outcome == OutcomeRetrievalFailed || r.Outcome == OutcomeGenerationFailed
}

// MaxQueryLength is the longest question accepted from callers.
const MaxQueryLength = 1000

// ValidateQuery checks a question before it reaches the chat service.
// Length is counted in runes.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return fmt.Errorf("%w: query must be at most %d characters", ErrInvalidInput, MaxQueryLength)
	}
	return nil
}

// Bounds for the number of context documents per question.
const (
	MinContextDocs     = 1
	MaxContextDocs     = 10
	DefaultContextDocs = 5
)
