package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

func TestOpenVectorStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		store, err := OpenVectorStore(ctx, domain.IndexSettings{
			Backend:    domain.VectorBackendSQLite,
			Path:       dir,
			Collection: "c",
		})
		require.NoError(t, err)
		defer store.Close()

		assert.Equal(t, "c", store.Collection())
		assert.Equal(t, filepath.Join(dir, "vectors.db"), store.Location())
	})

	t.Run("memory", func(t *testing.T) {
		store, err := OpenVectorStore(ctx, domain.IndexSettings{Backend: domain.VectorBackendMemory})
		require.NoError(t, err)
		assert.Equal(t, "memory", store.Location())
		assert.Equal(t, domain.DefaultCollection, store.Collection())
	})

	t.Run("pgvector without dsn", func(t *testing.T) {
		_, err := OpenVectorStore(ctx, domain.IndexSettings{Backend: domain.VectorBackendPgvector})
		assert.True(t, errors.Is(err, domain.ErrConfig))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := OpenVectorStore(ctx, domain.IndexSettings{Backend: "chroma"})
		assert.True(t, errors.Is(err, domain.ErrConfig))
	})
}
