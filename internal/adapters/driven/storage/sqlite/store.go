package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// dbFile is the database file name inside the index directory.
const dbFile = "vectors.db"

// Store is a SQLite-backed vector store holding one collection.
type Store struct {
	db         *sql.DB
	path       string
	collection string
}

// NewStore opens or creates the vector database in dir.
// If dir is empty, defaults to domain.DefaultIndexPath.
func NewStore(dir, collection string) (*Store, error) {
	if dir == "" {
		dir = domain.DefaultIndexPath
	}
	if collection == "" {
		collection = domain.DefaultCollection
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)

	// WAL lets searches run while an index is being written.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		collection: collection,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Upsert inserts or replaces records by document ID in a single transaction.
func (s *Store) Upsert(
	ctx context.Context, space driven.EmbeddingSpace, docs []domain.Document, embeddings [][]float32,
) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("sqlite: %d documents but %d embeddings", len(docs), len(embeddings))
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
		INSERT INTO records (collection, id, text, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			text = excluded.text,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, d := range docs {
		meta, err := vecmath.EncodeMetadata(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", d.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, s.collection, d.ID, d.Text, string(meta), vecmath.Encode(embeddings[i])); err != nil {
			return fmt.Errorf("upsert %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Query scans the collection and returns up to k nearest records.
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

	q, args := s.selectRecords(filter)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var results []domain.QueryResult
	for rows.Next() {
		var (
			id, text, meta string
			blob           []byte
		)
		if err := rows.Scan(&id, &text, &meta, &blob); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		metadata, err := vecmath.DecodeMetadata([]byte(meta))
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		// The SQL filter compares raw JSON values; recheck in text form.
		if !vecmath.MatchesFilter(metadata, filter) {
			continue
		}
		embedding, err := vecmath.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		results = append(results, domain.QueryResult{
			ID:       id,
			Text:     text,
			Metadata: metadata,
			Distance: vecmath.CosineDistance(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return vecmath.SortAndTruncate(results, k), nil
}

// selectRecords builds the scan query. Filter keys are sorted so the
// statement text is stable.
func (s *Store) selectRecords(filter map[string]string) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, text, metadata, embedding FROM records WHERE collection = ?")
	args := []any{s.collection}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" AND CAST(json_extract(metadata, ?) AS TEXT) = ?")
		args = append(args, "$."+jsonPathKey(k), filter[k])
	}
	return b.String(), args
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", s.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Space returns the recorded embedding space, or the zero value.
func (s *Store) Space(ctx context.Context) (driven.EmbeddingSpace, error) {
	var space driven.EmbeddingSpace
	err := s.db.QueryRowContext(ctx,
		"SELECT model, dimensions FROM collections WHERE name = ?", s.collection,
	).Scan(&space.Model, &space.Dimensions)
	if errors.Is(err, sql.ErrNoRows) {
		return driven.EmbeddingSpace{}, nil
	}
	if err != nil {
		return driven.EmbeddingSpace{}, fmt.Errorf("read collection: %w", err)
	}
	return space, nil
}

// Reset drops the collection and its records.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", s.collection); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", s.collection); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return tx.Commit()
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Location returns the database file path.
func (s *Store) Location() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// claimSpace records space on first write and rejects a different one after.
func (s *Store) claimSpace(ctx context.Context, tx *sql.Tx, space driven.EmbeddingSpace) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO collections (name, model, dimensions) VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, s.collection, space.Model, space.Dimensions)
	if err != nil {
		return fmt.Errorf("record collection: %w", err)
	}

	var have driven.EmbeddingSpace
	err = tx.QueryRowContext(ctx,
		"SELECT model, dimensions FROM collections WHERE name = ?", s.collection,
	).Scan(&have.Model, &have.Dimensions)
	if err != nil {
		return fmt.Errorf("read collection: %w", err)
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

// jsonPathKey quotes a metadata key for use in a JSON path.
func jsonPathKey(key string) string {
	return `"` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_init.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
