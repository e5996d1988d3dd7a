package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView *chat.View

	// stats is shown in the header once loaded.
	stats *domain.IndexStats

	width    int
	height   int
	quitting bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat application. opts applies to every question.
func NewApp(ports *Ports, opts driving.AnswerOptions) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		chatView: chat.NewView(s, km, ports.Chat, opts),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("ubuzima - NISR Rwanda data chat"),
		a.chatView.Init(),
		a.loadStats(),
	)
}

func (a *App) loadStats() tea.Cmd {
	if a.ports.Index == nil {
		return nil
	}
	ctx, index := a.ctx, a.ports.Index
	return func() tea.Msg {
		stats, err := index.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keymap.Quit) {
			a.quitting = true
			return a, tea.Quit
		}

	case messages.Quit:
		a.quitting = true
		return a, tea.Quit

	case messages.StatsLoaded:
		if msg.Err == nil {
			stats := msg.Stats
			a.stats = &stats
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// One line for the header.
		msg.Height--
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.header(), a.chatView.View())
}

func (a *App) header() string {
	title := a.styles.Title.Render("Ubuzima Hub")
	if a.stats == nil {
		return title
	}
	info := fmt.Sprintf("  %d documents in %s", a.stats.TotalDocuments, a.stats.CollectionName)
	return title + a.styles.Muted.Render(info)
}

// Run starts the TUI on the given terminal streams and blocks until it exits.
// Cancelling the app context stops the program without an error.
func (a *App) Run(in io.Reader, out io.Writer) error {
	p := tea.NewProgram(a,
		tea.WithAltScreen(),
		tea.WithContext(a.ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// ChatView returns the chat view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// Quitting reports whether the app is shutting down.
func (a *App) Quitting() bool {
	return a.quitting
}
