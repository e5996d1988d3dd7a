package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
)

var testSpace = driven.EmbeddingSpace{Model: "test-embed", Dimensions: 2}

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), "test")
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testDoc(id, typ string, year int) domain.Document {
	return domain.Document{
		ID:   id,
		Text: "text of " + id,
		Metadata: domain.Metadata{
			domain.MetaSource: domain.SourceNutrition,
			domain.MetaType:   typ,
			domain.MetaYear:   year,
		},
	}
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "vectordb")

	store, err := NewStore(dir, "")
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, filepath.Join(dir, "vectors.db"))
	assert.Equal(t, filepath.Join(dir, "vectors.db"), store.Location())
	assert.Equal(t, domain.DefaultCollection, store.Collection())
}

func TestNewStore_MigrationsApplied(t *testing.T) {
	store := setupTestStore(t)

	var version int
	err := store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"collections", "records"} {
		var name string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir, "test")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("a", "nutrition_data", 2020)}, [][]float32{{1, 0}}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir, "test")
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	space, err := reopened.Space(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSpace, space)
}

// ==================== Vector Store Tests ====================

func TestStore_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	docs := []domain.Document{
		testDoc("near", "nutrition_data", 2020),
		testDoc("far", "nutrition_data", 2020),
		testDoc("mid", "survey_metadata", 2019),
	}
	embeddings := [][]float32{{1, 0}, {-1, 0}, {1, 1}}
	require.NoError(t, store.Upsert(ctx, testSpace, docs, embeddings))

	results, err := store.Query(ctx, testSpace, []float32{1, 0}, 3, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"near", "mid", "far"}, []string{results[0].ID, results[1].ID, results[2].ID})
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
	assert.InDelta(t, 2, results[2].Distance, 1e-6)
	assert.Equal(t, "text of near", results[0].Text)
	assert.Equal(t, int64(2020), results[0].Metadata[domain.MetaYear])
	assert.Equal(t, domain.SourceNutrition, results[0].Metadata.String(domain.MetaSource))
}

func TestStore_Query_TruncatesToK(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	docs := []domain.Document{
		testDoc("a", "nutrition_data", 2020),
		testDoc("b", "nutrition_data", 2020),
		testDoc("c", "nutrition_data", 2020),
	}
	require.NoError(t, store.Upsert(ctx, testSpace, docs, [][]float32{{1, 0}, {0, 1}, {1, 1}}))

	results, err := store.Query(ctx, testSpace, []float32{1, 0}, 2, nil)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestStore_Query_Filter(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	docs := []domain.Document{
		testDoc("n2020", "nutrition_data", 2020),
		testDoc("n2015", "nutrition_data", 2015),
		testDoc("s2020", "survey_metadata", 2020),
	}
	require.NoError(t, store.Upsert(ctx, testSpace, docs, [][]float32{{1, 0}, {1, 0}, {1, 0}}))

	tests := []struct {
		name   string
		filter map[string]string
		want   []string
	}{
		{"by type", map[string]string{domain.MetaType: "survey_metadata"}, []string{"s2020"}},
		{"by numeric year", map[string]string{domain.MetaYear: "2015"}, []string{"n2015"}},
		{"combined", map[string]string{domain.MetaType: "nutrition_data", domain.MetaYear: "2020"}, []string{"n2020"}},
		{"no match", map[string]string{domain.MetaType: "other"}, nil},
		{"unknown key", map[string]string{"missing": "x"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Query(ctx, testSpace, []float32{1, 0}, 10, tt.filter)
			require.NoError(t, err)

			var ids []string
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_Upsert_Overwrites(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("a", "nutrition_data", 2020)}, [][]float32{{1, 0}}))

	updated := testDoc("a", "nutrition_data", 2021)
	updated.Text = "updated"
	require.NoError(t, store.Upsert(ctx, testSpace, []domain.Document{updated}, [][]float32{{0, 1}}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.Query(ctx, testSpace, []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "updated", results[0].Text)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
	assert.Equal(t, "2021", results[0].Metadata.String(domain.MetaYear))
}

func TestStore_Upsert_LengthMismatch(t *testing.T) {
	store := setupTestStore(t)

	err := store.Upsert(context.Background(), testSpace,
		[]domain.Document{testDoc("a", "nutrition_data", 2020)}, nil)

	assert.Error(t, err)
}

func TestStore_SpaceMismatch(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("a", "nutrition_data", 2020)}, [][]float32{{1, 0}}))

	other := driven.EmbeddingSpace{Model: "other", Dimensions: 3}

	err := store.Upsert(ctx, other,
		[]domain.Document{testDoc("b", "nutrition_data", 2020)}, [][]float32{{1, 0, 0}})
	assert.True(t, errors.Is(err, domain.ErrEmbeddingMismatch))

	_, err = store.Query(ctx, other, []float32{1, 0, 0}, 1, nil)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingMismatch))

	// The failed write left nothing behind.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_Upsert_WrongDimension(t *testing.T) {
	store := setupTestStore(t)

	err := store.Upsert(context.Background(), testSpace,
		[]domain.Document{testDoc("a", "nutrition_data", 2020)}, [][]float32{{1, 0, 0}})

	assert.True(t, errors.Is(err, domain.ErrEmbeddingMismatch))
}

func TestStore_Space_EmptyCollection(t *testing.T) {
	store := setupTestStore(t)

	space, err := store.Space(context.Background())

	require.NoError(t, err)
	assert.True(t, space.IsZero())
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("a", "nutrition_data", 2020)}, [][]float32{{1, 0}}))

	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	space, err := store.Space(ctx)
	require.NoError(t, err)
	assert.True(t, space.IsZero())

	// A new model may be used after a reset.
	other := driven.EmbeddingSpace{Model: "other", Dimensions: 3}
	require.NoError(t, store.Upsert(ctx, other,
		[]domain.Document{testDoc("b", "nutrition_data", 2020)}, [][]float32{{1, 0, 0}}))
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewStore(dir, "first")
	require.NoError(t, err)
	defer first.Close()
	second, err := NewStore(dir, "second")
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, first.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("a", "nutrition_data", 2020)}, [][]float32{{1, 0}}))

	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
