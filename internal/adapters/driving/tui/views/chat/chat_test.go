package chat

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

type mockChatService struct {
	mu      sync.Mutex
	result  domain.ChatResult
	queries []string
	opts    driving.AnswerOptions
}

func (m *mockChatService) Answer(_ context.Context, query string, opts driving.AnswerOptions) domain.ChatResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.opts = opts
	return m.result
}

func (m *mockChatService) IsOutOfScope(_ string) bool { return false }

func answered() domain.ChatResult {
	n := 2
	return domain.ChatResult{
		Answer: "Stunting among children under five was 33.1% in 2020.",
		Sources: []domain.Source{
			{Source: domain.SourceNutrition, Year: "2020", Type: "nutrition_data"},
			{Source: domain.SourceNutrition, Year: "2020", Type: "nutrition_data"},
		},
		ContextUsed:   true,
		IsRelevant:    true,
		RetrievedDocs: &n,
		Outcome:       domain.OutcomeAnswered,
	}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func ask(t *testing.T, v *View, question string) tea.Msg {
	t.Helper()
	v.Input().SetValue(question)
	_, cmd := v.Update(enter)
	require.NotNil(t, cmd)
	return cmd()
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockChatService{}, driving.AnswerOptions{})

	require.NotNil(t, v)
	assert.Zero(t, v.Turns())
	assert.False(t, v.Pending())
	assert.Contains(t, v.Transcript(), "Type quit")
	assert.NotNil(t, v.Init())
}

func TestView_AskAndAnswer(t *testing.T) {
	svc := &mockChatService{result: answered()}
	v := NewView(nil, nil, svc, driving.AnswerOptions{MaxContextDocs: 3})

	msg := ask(t, v, "  What is the stunting rate in Rwanda?  ")

	assert.True(t, v.Pending())
	assert.Equal(t, 1, v.Turns())
	assert.Empty(t, v.Input().Value())
	assert.Equal(t, status.StateThinking, v.StatusBar().State())
	assert.Contains(t, v.Transcript(), "Thinking...")

	received, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, "What is the stunting rate in Rwanda?", received.Query)
	assert.Equal(t, []string{"What is the stunting rate in Rwanda?"}, svc.queries)
	assert.Equal(t, 3, svc.opts.MaxContextDocs)

	v.Update(received)

	assert.False(t, v.Pending())
	assert.Equal(t, status.StateAnswered, v.StatusBar().State())
	transcript := v.Transcript()
	assert.Contains(t, transcript, "33.1%")
	assert.Contains(t, transcript, "Sources: NISR Nutrition Indicators (2020)")
	assert.NotContains(t, transcript, "Thinking...")
}

func TestView_GenerationFailure(t *testing.T) {
	svc := &mockChatService{result: domain.ChatResult{
		Answer:  domain.ErrorAnswerPrefix + "rate limited",
		Sources: []domain.Source{},
		Error:   "rate limited",
		Outcome: domain.OutcomeGenerationFailed,
	}}
	v := NewView(nil, nil, svc, driving.AnswerOptions{})

	v.Update(ask(t, v, "stunting in Rwanda"))

	assert.Equal(t, status.StateError, v.StatusBar().State())
	assert.Equal(t, "rate limited", v.StatusBar().Message())
}

func TestView_IgnoresEmptyAndConcurrentQuestions(t *testing.T) {
	svc := &mockChatService{result: answered()}
	v := NewView(nil, nil, svc, driving.AnswerOptions{})

	v.Input().SetValue("   ")
	_, cmd := v.Update(enter)
	assert.Nil(t, cmd)

	ask(t, v, "first question about Rwanda")
	v.Input().SetValue("second question")
	_, cmd = v.Update(enter)

	assert.Nil(t, cmd)
	assert.Equal(t, 1, v.Turns())
}

func TestView_QuitWords(t *testing.T) {
	for _, word := range []string{"quit", "exit", "q", "QUIT"} {
		t.Run(word, func(t *testing.T) {
			svc := &mockChatService{}
			v := NewView(nil, nil, svc, driving.AnswerOptions{})

			msg := ask(t, v, word)

			assert.IsType(t, messages.Quit{}, msg)
			assert.Empty(t, svc.queries)
			assert.Zero(t, v.Turns())
		})
	}
}

func TestView_CancelAndClear(t *testing.T) {
	v := NewView(nil, nil, &mockChatService{result: answered()}, driving.AnswerOptions{})
	v.Update(ask(t, v, "stunting in Rwanda"))

	v.Input().SetValue("draft")
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, v.Input().Value())

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Zero(t, v.Turns())
	assert.Equal(t, status.StateReady, v.StatusBar().State())
	assert.Contains(t, v.Transcript(), "Type quit")
}

func TestView_TypingReachesInput(t *testing.T) {
	v := NewView(nil, nil, &mockChatService{}, driving.AnswerOptions{})

	for _, r := range "qjk" {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "qjk", v.Input().Value())
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, nil, &mockChatService{}, driving.AnswerOptions{})

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, v.viewport.Width)
	assert.Equal(t, 40-chromeHeight, v.viewport.Height)
	assert.Equal(t, 120, v.StatusBar().Width())

	v.SetDimensions(40, 2)
	assert.Equal(t, 3, v.viewport.Height)
}

func TestView_Render(t *testing.T) {
	v := NewView(nil, nil, &mockChatService{}, driving.AnswerOptions{})

	out := v.View()

	assert.Contains(t, out, "Ask:")
	assert.Contains(t, out, "Ready")
}

func TestSourcesLine(t *testing.T) {
	tests := []struct {
		name    string
		sources []domain.Source
		want    string
	}{
		{"none", nil, ""},
		{
			"dedupes in order",
			[]domain.Source{
				{Source: domain.SourceNutrition, Year: "2020"},
				{Source: domain.SourceSurvey, Year: "2019-2020"},
				{Source: domain.SourceNutrition, Year: "2020"},
			},
			"Sources: NISR Nutrition Indicators (2020), NISR Survey Catalog (2019-2020)",
		},
		{
			"missing year",
			[]domain.Source{{Source: domain.SourceSurvey}},
			"Sources: NISR Survey Catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourcesLine(tt.sources))
		})
	}
}
