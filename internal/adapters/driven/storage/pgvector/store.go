package pgvector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS ubuzima_collections (
    name TEXT PRIMARY KEY,
    model TEXT NOT NULL,
    dimensions INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ubuzima_records (
    collection TEXT NOT NULL REFERENCES ubuzima_collections(name) ON DELETE CASCADE,
    id TEXT NOT NULL,
    text TEXT NOT NULL,
    metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
    embedding vector NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (collection, id)
);
`

// Store is a pgvector-backed vector store holding one collection.
type Store struct {
	db         *sql.DB
	collection string
	location   string
}

// NewStore connects to PostgreSQL and creates the schema if needed.
func NewStore(ctx context.Context, dsn, collection string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: pgvector DSN is empty", domain.ErrConfig)
	}
	if collection == "" {
		collection = domain.DefaultCollection
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStoreUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to postgres: %w", domain.ErrStoreUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %w", domain.ErrStoreUnavailable, describe(err))
	}

	return &Store{
		db:         db,
		collection: collection,
		location:   redact(dsn),
	}, nil
}

// Upsert inserts or replaces records by document ID in a single transaction.
func (s *Store) Upsert(
	ctx context.Context, space driven.EmbeddingSpace, docs []domain.Document, embeddings [][]float32,
) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("pgvector: %d documents but %d embeddings", len(docs), len(embeddings))
	}
	if len(docs) == 0 {
		return nil
	}
	for i, e := range embeddings {
		if len(e) != space.Dimensions {
			return fmt.Errorf("%w: document %s has %d dims, expected %d",
				domain.ErrEmbeddingMismatch, docs[i].ID, len(e), space.Dimensions)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.claimSpace(ctx, tx, space); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ubuzima_records (collection, id, text, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, id) DO UPDATE SET
			text = EXCLUDED.text,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", describe(err))
	}
	defer stmt.Close()

	for i, d := range docs {
		meta, err := vecmath.EncodeMetadata(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", d.ID, err)
		}
		vec := pgvector.NewVector(embeddings[i])
		if _, err := stmt.ExecContext(ctx, s.collection, d.ID, d.Text, string(meta), vec); err != nil {
			return fmt.Errorf("upsert %s: %w", d.ID, describe(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", describe(err))
	}
	return nil
}

// Query returns up to k nearest records ordered by cosine distance.
func (s *Store) Query(
	ctx context.Context, space driven.EmbeddingSpace, query []float32, k int, filter map[string]string,
) ([]domain.QueryResult, error) {
	have, err := s.Space(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkSpace(have, space); err != nil {
		return nil, err
	}
	if have.IsZero() || k <= 0 {
		return []domain.QueryResult{}, nil
	}

	q, args := s.selectNearest(pgvector.NewVector(query), k, filter)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", describe(err))
	}
	defer rows.Close()

	results := []domain.QueryResult{}
	for rows.Next() {
		var (
			r        domain.QueryResult
			meta     []byte
			distance sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Text, &meta, &distance); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if r.Metadata, err = vecmath.DecodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		r.Distance = clampDistance(distance)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	// Re-sort after clamping so zero-norm rows keep the shared ordering.
	return vecmath.SortAndTruncate(results, k), nil
}

// selectNearest builds the ranking query. Filter keys are sorted so the
// statement text is stable.
func (s *Store) selectNearest(vec pgvector.Vector, k int, filter map[string]string) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, text, metadata, embedding <=> $1 AS distance FROM ubuzima_records WHERE collection = $2")
	args := []any{vec, s.collection}

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, key, filter[key])
		fmt.Fprintf(&b, " AND metadata->>$%d = $%d", len(args)-1, len(args))
	}

	args = append(args, k)
	fmt.Fprintf(&b, " ORDER BY distance, id LIMIT $%d", len(args))
	return b.String(), args
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ubuzima_records WHERE collection = $1", s.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", describe(err))
	}
	return n, nil
}

// Space returns the recorded embedding space, or the zero value.
func (s *Store) Space(ctx context.Context) (driven.EmbeddingSpace, error) {
	var space driven.EmbeddingSpace
	err := s.db.QueryRowContext(ctx,
		"SELECT model, dimensions FROM ubuzima_collections WHERE name = $1", s.collection,
	).Scan(&space.Model, &space.Dimensions)
	if errors.Is(err, sql.ErrNoRows) {
		return driven.EmbeddingSpace{}, nil
	}
	if err != nil {
		return driven.EmbeddingSpace{}, fmt.Errorf("read collection: %w", describe(err))
	}
	return space, nil
}

// Reset drops the collection. Records go with it via ON DELETE CASCADE.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM ubuzima_collections WHERE name = $1", s.collection); err != nil {
		return fmt.Errorf("delete collection: %w", describe(err))
	}
	return nil
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Location returns the DSN with the password removed.
func (s *Store) Location() string {
	return s.location
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) claimSpace(ctx context.Context, tx *sql.Tx, space driven.EmbeddingSpace) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ubuzima_collections (name, model, dimensions) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`, s.collection, space.Model, space.Dimensions)
	if err != nil {
		return fmt.Errorf("record collection: %w", describe(err))
	}

	var have driven.EmbeddingSpace
	err = tx.QueryRowContext(ctx,
		"SELECT model, dimensions FROM ubuzima_collections WHERE name = $1 FOR UPDATE", s.collection,
	).Scan(&have.Model, &have.Dimensions)
	if err != nil {
		return fmt.Errorf("read collection: %w", describe(err))
	}
	return checkSpace(have, space)
}

func checkSpace(have, want driven.EmbeddingSpace) error {
	if have.IsZero() || have.Matches(want) {
		return nil
	}
	return fmt.Errorf("%w: collection uses %s (%d dims), got %s (%d dims)",
		domain.ErrEmbeddingMismatch, have.Model, have.Dimensions, want.Model, want.Dimensions)
}

// clampDistance maps NULL and NaN (zero-norm vectors) to 1.
func clampDistance(d sql.NullFloat64) float64 {
	if !d.Valid || math.IsNaN(d.Float64) {
		return 1
	}
	return math.Max(0, math.Min(2, d.Float64))
}

// describe adds the SQLSTATE to PostgreSQL errors.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "08" {
			return fmt.Errorf("%w: %s (%s)", domain.ErrStoreUnavailable, pqErr.Message, pqErr.Code)
		}
		return fmt.Errorf("%w (%s: %s)", err, pqErr.Code, pqErr.Code.Name())
	}
	return err
}

// redact strips the password from a URL-style DSN.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "postgres"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}
