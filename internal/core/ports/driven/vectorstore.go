package driven

import (
	"context"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// VectorStore persists documents with their embeddings and answers
// nearest-neighbour queries by cosine distance.
//
// A store holds exactly one collection. The collection records the embedding
// model and dimension of its first write; later writes or queries with a
// different model or dimension fail with domain.ErrEmbeddingMismatch.
type VectorStore interface {
	// Upsert inserts or replaces records by document ID.
	// docs and embeddings are parallel slices of equal length.
	Upsert(ctx context.Context, space EmbeddingSpace, docs []domain.Document, embeddings [][]float32) error

	// Query returns up to k records closest to the query vector,
	// ordered by non-decreasing distance. Records whose metadata does not
	// equal every filter entry are skipped. A nil filter matches everything.
	Query(ctx context.Context, space EmbeddingSpace, query []float32, k int, filter map[string]string) ([]domain.QueryResult, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)

	// Space returns the embedding space recorded for the collection.
	// The zero value means the collection has never been written.
	Space(ctx context.Context) (EmbeddingSpace, error)

	// Reset drops every record and forgets the recorded embedding space.
	Reset(ctx context.Context) error

	// Collection returns the collection name.
	Collection() string

	// Location describes where records are stored (file path, DSN host, "memory").
	Location() string

	// Close releases resources.
	Close() error
}

// EmbeddingSpace identifies the model that produced a set of vectors.
type EmbeddingSpace struct {
	Model      string
	Dimensions int
}

// IsZero reports whether no space has been recorded.
func (s EmbeddingSpace) IsZero() bool {
	return s.Model == "" && s.Dimensions == 0
}

// Matches reports whether two spaces are interchangeable.
func (s EmbeddingSpace) Matches(other EmbeddingSpace) bool {
	return s.Model == other.Model && s.Dimensions == other.Dimensions
}
