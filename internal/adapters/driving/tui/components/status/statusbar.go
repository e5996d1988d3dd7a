// Package status provides the status bar for the chat TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// State represents the current chat state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar displays the last outcome and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	outcome domain.Outcome
	sources int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateAnswered:
		return s.renderOutcome()
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderOutcome() string {
	switch s.outcome {
	case domain.OutcomeAnswered:
		return s.styles.Success.Render(fmt.Sprintf("Answered from %d NISR sources", s.sources))
	case domain.OutcomeScopeRejected:
		return s.styles.Warning.Render("Outside NISR Rwanda scope")
	case domain.OutcomeNoContext:
		return s.styles.Warning.Render("No matching NISR data")
	}
	return s.styles.Muted.Render(s.outcome.String())
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetResult records the outcome of the last question.
func (s *Bar) SetResult(result domain.ChatResult) {
	s.outcome = result.Outcome
	s.sources = len(result.Sources)
	if result.Failed() {
		s.state = StateError
		s.message = result.Error
		return
	}
	s.state = StateAnswered
	s.message = ""
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// Message returns the current error message.
func (s *Bar) Message() string {
	return s.message
}

// Outcome returns the outcome of the last question.
func (s *Bar) Outcome() domain.Outcome {
	return s.outcome
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to its initial state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.outcome = ""
	s.sources = 0
}
