// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// Welcome is shown before the first question.
const Welcome = "Ask a question about Rwanda's nutrition indicators or NISR surveys.\n" +
	"Type quit, exit or q to leave."

// chromeHeight is the number of lines used by the input and status bar.
const chromeHeight = 4

// turn is one question and, once it arrives, its answer.
type turn struct {
	question string
	result   *domain.ChatResult
}

// View shows the transcript above a question input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	viewport  viewport.Model
	statusbar *status.Bar

	chat driving.ChatService
	opts driving.AnswerOptions
	ctx  context.Context

	turns   []turn
	pending bool
	width   int
	height  int
}

// NewView creates a chat view. opts is applied to every question.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chat driving.ChatService,
	opts driving.AnswerOptions,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		viewport:  viewport.New(80, 20),
		statusbar: status.NewBar(s, km),
		chat:      chat,
		opts:      opts,
		ctx:       context.Background(),
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context passed to the chat service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Send):
		return v.submit()

	case key.Matches(msg, v.keymap.Cancel):
		v.input.Reset()
		return v, nil

	case key.Matches(msg, v.keymap.Clear):
		if !v.pending {
			v.turns = nil
			v.statusbar.Clear()
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keymap.ScrollUp):
		v.viewport.SetYOffset(v.viewport.YOffset - v.viewport.Height)
		return v, nil

	case key.Matches(msg, v.keymap.ScrollDown):
		v.viewport.SetYOffset(v.viewport.YOffset + v.viewport.Height)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question. Only one question is in flight at a time.
func (v *View) submit() (*View, tea.Cmd) {
	query := strings.TrimSpace(v.input.Value())
	if query == "" || v.pending {
		return v, nil
	}
	if keymap.IsQuitWord(query) {
		return v, func() tea.Msg { return messages.Quit{} }
	}

	v.input.Reset()
	v.turns = append(v.turns, turn{question: query})
	v.pending = true
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	return v, v.ask(query)
}

func (v *View) ask(query string) tea.Cmd {
	ctx, svc, opts := v.ctx, v.chat, v.opts
	return func() tea.Msg {
		return messages.AnswerReceived{
			Query:  query,
			Result: svc.Answer(ctx, query, opts),
		}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].result == nil && v.turns[i].question == msg.Query {
			result := msg.Result
			v.turns[i].result = &result
			break
		}
	}
	v.pending = false
	v.statusbar.SetResult(msg.Result)
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render(Welcome)
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))

	var b strings.Builder
	for i := range v.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		t := v.turns[i]
		b.WriteString(v.styles.Question.Render("You"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(t.question))
		b.WriteString("\n")
		b.WriteString(v.styles.Answer.Render("Ubuzima"))
		b.WriteString("\n")

		if t.result == nil {
			b.WriteString(v.styles.Muted.Render("Thinking..."))
			continue
		}
		b.WriteString(wrap.Render(t.result.Answer))
		if line := SourcesLine(t.result.Sources); line != "" {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(wrap.Render(line)))
		}
	}
	return b.String()
}

// SourcesLine renders cited sources once each, in citation order.
func SourcesLine(sources []domain.Source) string {
	if len(sources) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(sources))
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		label := s.Source
		if s.Year != "" {
			label = fmt.Sprintf("%s (%s)", s.Source, s.Year)
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		parts = append(parts, label)
	}
	return "Sources: " + strings.Join(parts, ", ")
}

// View renders the transcript, input and status bar.
func (v *View) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.viewport.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sizes the view. The transcript takes whatever the input
// and status bar leave.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Turns returns the number of questions asked.
func (v *View) Turns() int {
	return len(v.turns)
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}
