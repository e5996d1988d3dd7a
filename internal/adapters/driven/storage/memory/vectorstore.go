package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type record struct {
	doc       domain.Document
	embedding []float32
}

// VectorStore is an in-memory implementation of driven.VectorStore.
// Search is a brute-force cosine scan.
type VectorStore struct {
	mu         sync.RWMutex
	collection string
	space      driven.EmbeddingSpace
	records    map[string]record
}

// NewVectorStore creates an empty in-memory collection.
func NewVectorStore(collection string) *VectorStore {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	return &VectorStore{
		collection: collection,
		records:    make(map[string]record),
	}
}

// Upsert inserts or replaces records by document ID.
func (s *VectorStore) Upsert(
	_ context.Context, space driven.EmbeddingSpace, docs []domain.Document, embeddings [][]float32,
) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("memory: %d documents but %d embeddings", len(docs), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSpace(space); err != nil {
		return err
	}
	for i, e := range embeddings {
		if len(e) != space.Dimensions {
			return fmt.Errorf("%w: document %s has %d dims, expected %d",
				domain.ErrEmbeddingMismatch, docs[i].ID, len(e), space.Dimensions)
		}
	}

	if s.space.IsZero() {
		s.space = space
	}
	for i, d := range docs {
		// Copy so callers cannot mutate stored state.
		d.Metadata = maps.Clone(d.Metadata)
		s.records[d.ID] = record{
			doc:       d,
			embedding: append([]float32(nil), embeddings[i]...),
		}
	}
	return nil
}

// Query returns up to k nearest records.
func (s *VectorStore) Query(
	_ context.Context, space driven.EmbeddingSpace, query []float32, k int, filter map[string]string,
) ([]domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkSpace(space); err != nil {
		return nil, err
	}

	results := make([]domain.QueryResult, 0, len(s.records))
	for _, r := range s.records {
		if !vecmath.MatchesFilter(r.doc.Metadata, filter) {
			continue
		}
		results = append(results, domain.QueryResult{
			ID:       r.doc.ID,
			Text:     r.doc.Text,
			Metadata: maps.Clone(r.doc.Metadata),
			Distance: vecmath.CosineDistance(query, r.embedding),
		})
	}
	return vecmath.SortAndTruncate(results, k), nil
}

// Count returns the number of records.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Space returns the recorded embedding space.
func (s *VectorStore) Space(_ context.Context) (driven.EmbeddingSpace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.space, nil
}

// Reset drops every record.
func (s *VectorStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]record)
	s.space = driven.EmbeddingSpace{}
	return nil
}

// Collection returns the collection name.
func (s *VectorStore) Collection() string {
	return s.collection
}

// Location returns "memory".
func (s *VectorStore) Location() string {
	return "memory"
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}

// checkSpace requires the caller to hold the lock.
func (s *VectorStore) checkSpace(space driven.EmbeddingSpace) error {
	if s.space.IsZero() || s.space.Matches(space) {
		return nil
	}
	return fmt.Errorf("%w: collection uses %s (%d dims), got %s (%d dims)",
		domain.ErrEmbeddingMismatch, s.space.Model, s.space.Dimensions, space.Model, space.Dimensions)
}
