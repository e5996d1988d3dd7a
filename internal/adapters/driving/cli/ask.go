package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

var (
	askDocs int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question from NISR data",
	Long: `Answers a single question about Rwanda using the indexed NISR datasets.

Questions about other countries or unrelated topics are refused without
calling the model. The answer lists the NISR records it was grounded on.`,
	Example: `  ubuzima ask "What is the stunting rate in Rwanda?"
  ubuzima ask -n 8 --json "How has wasting changed since 2010?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askDocs, "docs", "n", 0, "context documents to retrieve, 1-10 (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if err := domain.ValidateQuery(query); err != nil {
		return err
	}
	if err := validateContextDocs(askDocs); err != nil {
		return err
	}

	a, err := loadApp(cmd.Context(), levelAnswers)
	if err != nil {
		return err
	}

	result := a.chat.Answer(cmd.Context(), query, driving.AnswerOptions{MaxContextDocs: askDocs})

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
	} else {
		printAnswer(cmd, result)
	}

	switch result.Outcome {
	case domain.OutcomeRetrievalFailed:
		return fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, result.Error)
	case domain.OutcomeGenerationFailed:
		return fmt.Errorf("%w: %s", domain.ErrLLMUnavailable, result.Error)
	}
	return nil
}

func printAnswer(cmd *cobra.Command, result domain.ChatResult) {
	cmd.Println(result.Answer)
	if line := chat.SourcesLine(result.Sources); line != "" {
		cmd.Println()
		cmd.Println(line)
	}
}

// validateContextDocs accepts zero (use the default) or a value in range.
func validateContextDocs(n int) error {
	if n == 0 || (n >= domain.MinContextDocs && n <= domain.MaxContextDocs) {
		return nil
	}
	return fmt.Errorf("--docs must be between %d and %d", domain.MinContextDocs, domain.MaxContextDocs)
}
