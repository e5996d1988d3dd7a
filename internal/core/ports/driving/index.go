package driving

import (
	"context"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// IndexService builds and queries the vector collection.
type IndexService interface {
	// Index embeds and stores documents, replacing any with the same ID.
	// Returns the number of documents written.
	Index(ctx context.Context, docs []domain.Document) (int, error)

	// Search returns the k documents nearest to the query, closest first.
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.QueryResult, error)

	// Stats describes the collection.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Clear drops every document from the collection.
	Clear(ctx context.Context) error
}

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// K is the number of results, between 1 and 10.
	K int

	// Filter restricts results to documents whose metadata equals every entry.
	Filter map[string]string
}
