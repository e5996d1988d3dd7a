package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
)

var testSpace = driven.EmbeddingSpace{Model: "test-embed", Dimensions: 2}

func testDoc(id, typ string) domain.Document {
	return domain.Document{
		ID:       id,
		Text:     "text of " + id,
		Metadata: domain.Metadata{domain.MetaType: typ, domain.MetaYear: 2020},
	}
}

func TestNewVectorStore_DefaultCollection(t *testing.T) {
	store := NewVectorStore("")

	assert.Equal(t, "nisr_rwanda_data", store.Collection())
	assert.Equal(t, "memory", store.Location())
	assert.NoError(t, store.Close())
}

func TestVectorStore_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore("test")

	docs := []domain.Document{
		testDoc("near", "nutrition_data"),
		testDoc("far", "nutrition_data"),
		testDoc("mid", "survey_metadata"),
	}
	embeddings := [][]float32{{1, 0}, {-1, 0}, {1, 1}}
	require.NoError(t, store.Upsert(ctx, testSpace, docs, embeddings))

	results, err := store.Query(ctx, testSpace, []float32{1, 0}, 3, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "near", results[0].ID)
	assert.Equal(t, "mid", results[1].ID)
	assert.Equal(t, "far", results[2].ID)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
	assert.InDelta(t, 2, results[2].Distance, 1e-6)
	assert.Equal(t, "text of near", results[0].Text)
}

func TestVectorStore_Query_TruncatesToK(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore("test")
	var docs []domain.Document
	var embeddings [][]float32
	for i := 0; i < 20; i++ {
		docs = append(docs, testDoc(fmt.Sprintf("d%d", i), "nutrition_data"))
		embeddings = append(embeddings, []float32{float32(i), 1})
	}
	require.NoError(t, store.Upsert(ctx, testSpace, docs, embeddings))

	results, err := store.Query(ctx, testSpace, []float32{1, 0}, 5, nil)

	require.NoError(t, err)
	assert.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
}

func TestVectorStore_Query_Filter(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore("test")
	require.NoError(t, store.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("n", "nutrition_data"), testDoc("s", "survey_metadata")},
		[][]float32{{1, 0}, {1, 0}}))

	results, err := store.Query(ctx, testSpace, []float32{1, 0}, 10,
		map[string]string{domain.MetaType: "survey_metadata"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s", results[0].ID)
}

func TestVectorStore_Upsert_Overwrites(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore("test")
	doc := testDoc("a", "nutrition_data")

	require.NoError(t, store.Upsert(ctx, testSpace, []domain.Document{doc}, [][]float32{{1, 0}}))
	doc.Text = "updated"
	require.NoError(t, store.Upsert(ctx, testSpace, []domain.Document{doc}, [][]float32{{0, 1}}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.Query(ctx, testSpace, []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "updated", results[0].Text)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
}

func TestVectorStore_SpaceMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore("test")
	require.NoError(t, store.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("a", "nutrition_data")}, [][]float32{{1, 0}}))

	other := driven.EmbeddingSpace{Model: "other", Dimensions: 2}

	err := store.Upsert(ctx, other, []domain.Document{testDoc("b", "nutrition_data")}, [][]float32{{1, 0}})
	assert.True(t, errors.Is(err, domain.ErrEmbeddingMismatch))

	_, err = store.Query(ctx, other, []float32{1, 0}, 1, nil)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingMismatch))

	space, err := store.Space(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSpace, space)
}

func TestVectorStore_Upsert_WrongDimension(t *testing.T) {
	store := NewVectorStore("test")

	err := store.Upsert(context.Background(), testSpace,
		[]domain.Document{testDoc("a", "nutrition_data")}, [][]float32{{1, 0, 0}})

	assert.True(t, errors.Is(err, domain.ErrEmbeddingMismatch))
}

func TestVectorStore_Upsert_LengthMismatch(t *testing.T) {
	store := NewVectorStore("test")

	err := store.Upsert(context.Background(), testSpace,
		[]domain.Document{testDoc("a", "nutrition_data")}, nil)

	assert.Error(t, err)
}

func TestVectorStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore("test")
	require.NoError(t, store.Upsert(ctx, testSpace,
		[]domain.Document{testDoc("a", "nutrition_data")}, [][]float32{{1, 0}}))

	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	space, err := store.Space(ctx)
	require.NoError(t, err)
	assert.True(t, space.IsZero())

	// A new model is accepted after reset.
	other := driven.EmbeddingSpace{Model: "other", Dimensions: 3}
	assert.NoError(t, store.Upsert(ctx, other,
		[]domain.Document{testDoc("a", "nutrition_data")}, [][]float32{{1, 0, 0}}))
}

func TestVectorStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore("test")
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Upsert(ctx, testSpace,
				[]domain.Document{testDoc(fmt.Sprintf("d%d", n), "nutrition_data")},
				[][]float32{{float32(n), 1}})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.Query(ctx, testSpace, []float32{1, 0}, 5, nil)
		}()
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
