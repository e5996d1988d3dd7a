package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService embeds documents into a vector store and searches them.
type IndexService struct {
	store       driven.VectorStore
	embedder    driven.EmbeddingService
	batchSize   int
	maxDistance float64
}

// NewIndexService creates a new index service.
// A batchSize outside [1, domain.MaxBatchSize] falls back to the default.
func NewIndexService(store driven.VectorStore, embedder driven.EmbeddingService, batchSize int) *IndexService {
	if batchSize < 1 || batchSize > domain.MaxBatchSize {
		batchSize = domain.DefaultBatchSize
	}
	return &IndexService{
		store:     store,
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// SetMaxDistance drops search results farther than d. Zero disables the cutoff.
func (s *IndexService) SetMaxDistance(d float64) {
	s.maxDistance = d
}

// BatchSize returns the number of documents written per batch.
func (s *IndexService) BatchSize() int {
	return s.batchSize
}

// Index embeds and upserts documents in batches.
func (s *IndexService) Index(ctx context.Context, docs []domain.Document) (int, error) {
	logger.Section("Indexing")
	if len(docs) == 0 {
		logger.Debug("No documents to index")
		return 0, nil
	}

	space := s.space()
	if err := s.checkSpace(ctx, space); err != nil {
		return 0, err
	}

	total := (len(docs) + s.batchSize - 1) / s.batchSize
	written := 0
	for start := 0; start < len(docs); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		end := min(start+s.batchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Text
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("embed batch %d/%d: %w", start/s.batchSize+1, total, err)
		}
		if len(embeddings) != len(batch) {
			return written, fmt.Errorf("embed batch %d/%d: got %d embeddings for %d documents",
				start/s.batchSize+1, total, len(embeddings), len(batch))
		}

		if err := s.store.Upsert(ctx, space, batch, embeddings); err != nil {
			return written, fmt.Errorf("upsert batch %d/%d: %w", start/s.batchSize+1, total, err)
		}

		written += len(batch)
		logger.Info("Indexed batch %d/%d", start/s.batchSize+1, total)
	}

	return written, nil
}

// Search embeds the query and returns the nearest documents.
func (s *IndexService) Search(
	ctx context.Context, query string, opts driving.SearchOptions,
) ([]domain.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if opts.K < domain.MinContextDocs || opts.K > domain.MaxContextDocs {
		return nil, fmt.Errorf("%w: k must be between %d and %d, got %d",
			domain.ErrInvalidInput, domain.MinContextDocs, domain.MaxContextDocs, opts.K)
	}

	logger.Debug("Search: k=%d filter=%v query=%q", opts.K, opts.Filter, query)

	space := s.space()
	if err := s.checkSpace(ctx, space); err != nil {
		return nil, err
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Query(ctx, space, vec, opts.K, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.store.Collection(), err)
	}

	if s.maxDistance > 0 {
		kept := results[:0]
		for _, r := range results {
			if r.Distance <= s.maxDistance {
				kept = append(kept, r)
			}
		}
		if dropped := len(results) - len(kept); dropped > 0 {
			logger.Debug("Dropped %d results beyond distance %.3f", dropped, s.maxDistance)
		}
		results = kept
	}

	logger.Debug("Search returned %d results", len(results))
	return results, nil
}

// Stats describes the collection.
func (s *IndexService) Stats(ctx context.Context) (domain.IndexStats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("count %s: %w", s.store.Collection(), err)
	}
	return domain.IndexStats{
		TotalDocuments: count,
		EmbeddingModel: s.embedder.ModelName(),
		CollectionName: s.store.Collection(),
		Location:       s.store.Location(),
	}, nil
}

// Clear drops every document and the recorded embedding space.
func (s *IndexService) Clear(ctx context.Context) error {
	logger.Info("Clearing collection %s", s.store.Collection())
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset %s: %w", s.store.Collection(), err)
	}
	return nil
}

func (s *IndexService) space() driven.EmbeddingSpace {
	return driven.EmbeddingSpace{
		Model:      s.embedder.ModelName(),
		Dimensions: s.embedder.Dimensions(),
	}
}

// checkSpace fails when the collection was built with a different model.
func (s *IndexService) checkSpace(ctx context.Context, want driven.EmbeddingSpace) error {
	have, err := s.store.Space(ctx)
	if err != nil {
		return fmt.Errorf("read embedding space: %w", err)
	}
	if have.IsZero() || have.Matches(want) {
		return nil
	}
	return fmt.Errorf("%w: collection %s was built with %s (%d dims), current model is %s (%d dims); run 'ubuzima index --clear'",
		domain.ErrEmbeddingMismatch, s.store.Collection(), have.Model, have.Dimensions, want.Model, want.Dimensions)
}
