package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and dataset statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

// statsOutput is the --json shape.
type statsOutput struct {
	Index   domain.IndexStats     `json:"index"`
	Dataset domain.DatasetSummary `json:"dataset"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, levelRetrieval)
	if err != nil {
		return err
	}

	stats, err := a.index.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}
	summary, err := a.dataset.Summary(ctx)
	if err != nil {
		return fmt.Errorf("failed to summarise datasets: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(statsOutput{Index: stats, Dataset: summary}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printIndexStats(cmd, stats)
	cmd.Println()
	cmd.Println("Datasets")
	cmd.Printf("  Nutrition records: %d\n", summary.NutritionRecords)
	cmd.Printf("  Years covered:     %s\n", joinOrNone(summary.YearsCovered))
	cmd.Printf("  Indicators:        %d\n", len(summary.Indicators))
	cmd.Printf("  Survey records:    %d\n", summary.SurveyRecords)
	cmd.Printf("  Total documents:   %d\n", summary.TotalDocuments)
	return nil
}

func printIndexStats(cmd *cobra.Command, stats domain.IndexStats) {
	cmd.Println("Index")
	cmd.Printf("  Documents:  %d\n", stats.TotalDocuments)
	cmd.Printf("  Model:      %s\n", stats.EmbeddingModel)
	cmd.Printf("  Collection: %s\n", stats.CollectionName)
	cmd.Printf("  Location:   %s\n", stats.Location)
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
