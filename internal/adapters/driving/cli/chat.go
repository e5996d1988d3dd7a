package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui"
	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/keymap"
	chatview "github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

var (
	chatDocs  int
	chatPlain bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `Opens an interactive session for asking questions about NISR data.

In a terminal a full-screen interface is shown. With --plain, or when input
is piped, questions are read one per line. Type quit, exit or q to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatDocs, "docs", "n", 0, "context documents to retrieve, 1-10 (default from settings)")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "read questions line by line instead of the full-screen interface")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := validateContextDocs(chatDocs); err != nil {
		return err
	}

	a, err := loadApp(cmd.Context(), levelAnswers)
	if err != nil {
		return err
	}
	opts := driving.AnswerOptions{MaxContextDocs: chatDocs}

	if !chatPlain && isTerminal(cmd.InOrStdin()) {
		return runChatTUI(cmd, a, opts)
	}
	return runChatLines(cmd, a.chat, opts)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runChatTUI(cmd *cobra.Command, a *app, opts driving.AnswerOptions) error {
	model, err := tui.NewApp(&tui.Ports{Chat: a.chat, Index: a.index}, opts)
	if err != nil {
		return err
	}
	if err := model.WithContext(cmd.Context()).Run(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("chat interface: %w", err)
	}
	return nil
}

// runChatLines answers one question per input line until EOF or a quit word.
func runChatLines(cmd *cobra.Command, svc driving.ChatService, opts driving.AnswerOptions) error {
	ctx := cmd.Context()

	cmd.Println(chatview.Welcome)
	cmd.Println()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("You: ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if keymap.IsQuitWord(query) {
			cmd.Println("Goodbye!")
			return nil
		}
		if err := domain.ValidateQuery(query); err != nil {
			cmd.Printf("Error: %v\n\n", err)
			continue
		}

		result := svc.Answer(ctx, query, opts)
		cmd.Println()
		cmd.Printf("Ubuzima: %s\n", result.Answer)
		if line := chatview.SourcesLine(result.Sources); line != "" {
			cmd.Println(line)
		}
		cmd.Println()

		if ctx.Err() != nil {
			return nil
		}
	}
	cmd.Println()
	return scanner.Err()
}
