package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ubuzima/internal/adapters/driven/dataset/csvfile"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// smokeQuery is searched after indexing to show the collection works.
const smokeQuery = "What is the stunting rate in Rwanda?"

var (
	indexClear bool
	indexWatch bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the NISR datasets",
	Long: `Loads the nutrition indicators and survey catalogue CSV files, turns each
row into a document, embeds the documents and writes them to the vector store.

Indexing the same files twice keeps the same document count: documents are
replaced by ID. Use --clear to drop the collection first, for example after
changing the embedding model.

With --watch the index is rebuilt from scratch whenever either file changes.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexClear, "clear", false, "drop the existing collection before indexing")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "rebuild the index when the CSV files change")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, levelRetrieval)
	if err != nil {
		return err
	}

	if err := rebuildIndex(ctx, cmd, a, indexClear); err != nil {
		return err
	}
	if !indexWatch {
		return nil
	}

	if a.watcher == nil {
		return errors.New("dataset watcher not configured")
	}
	cmd.Println()
	cmd.Println("Watching dataset files for changes (Ctrl+C to stop)...")
	return a.watcher.Watch(ctx, csvfile.DefaultDebounce, func() {
		cmd.Println("Dataset changed, rebuilding index...")
		if err := rebuildIndex(ctx, cmd, a, true); err != nil {
			logger.Error("Rebuild failed: %v", err)
		}
	})
}

// rebuildIndex loads, builds and indexes every document, then prints stats
// and a sample search.
func rebuildIndex(ctx context.Context, cmd *cobra.Command, a *app, clearFirst bool) error {
	if clearFirst {
		if err := a.index.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		cmd.Println("Cleared existing collection.")
	}

	docs, err := a.dataset.Documents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load datasets: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents to index. Check the data directory and file names in 'ubuzima settings'.")
		return nil
	}
	cmd.Printf("Built %d documents.\n", len(docs))

	n, err := a.index.Index(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	cmd.Printf("Indexed %d documents.\n", n)

	stats, err := a.index.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	cmd.Println()
	printIndexStats(cmd, stats)

	results, err := a.index.Search(ctx, smokeQuery, driving.SearchOptions{K: 3})
	if err != nil {
		return fmt.Errorf("test search failed: %w", err)
	}
	cmd.Println()
	cmd.Printf("Test search: %q\n", smokeQuery)
	for i := range results {
		cmd.Printf("  %d. %s\n", i+1, truncate(results[i].Text, 100))
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
