package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

var (
	searchLimit int
	searchType  string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed NISR documents",
	Long: `Finds the indexed documents closest in meaning to the query.
Results are ordered by cosine distance; smaller is closer. No answer is
generated, so no LLM provider is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results (1-10)")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "only return nutrition_data or survey_metadata documents")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	if err := domain.ValidateQuery(query); err != nil {
		return err
	}

	opts := driving.SearchOptions{K: searchLimit}
	if searchType != "" {
		t := domain.DocumentType(searchType)
		if !t.IsValid() {
			return fmt.Errorf("unknown document type %q", searchType)
		}
		opts.Filter = map[string]string{domain.MetaType: t.String()}
	}

	a, err := loadApp(cmd.Context(), levelRetrieval)
	if err != nil {
		return err
	}

	results, err := a.index.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	if results == nil {
		results = []domain.QueryResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.QueryResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := results[i]
		// [N] id (type, year) distance
		cmd.Printf("[%d] %s (%s, %s) distance %.4f\n", i+1, r.ID,
			r.Metadata.String(domain.MetaType), r.Metadata.String(domain.MetaYear), r.Distance)
		cmd.Printf("    %s\n", truncate(r.Text, 160))
		cmd.Println()
	}
}
