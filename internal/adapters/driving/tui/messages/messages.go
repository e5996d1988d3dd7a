// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// AnswerReceived carries the result of one question back to the model.
type AnswerReceived struct {
	Query  string
	Result domain.ChatResult
}

// StatsLoaded carries the collection statistics shown in the header.
type StatsLoaded struct {
	Stats domain.IndexStats
	Err   error
}

// Quit signals the application should exit.
type Quit struct{}
