// Package storage opens the configured vector store backend.
//
// Subpackages hold the backends: memory (tests and one-off runs), sqlite
// (the default local file) and pgvector (shared PostgreSQL). vecmath holds
// the encoding and distance helpers the brute-force backends share.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
)

// OpenVectorStore creates the vector store named by settings.
func OpenVectorStore(ctx context.Context, settings domain.IndexSettings) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.VectorBackendSQLite, "":
		store, err := sqlite.NewStore(settings.Path, settings.Collection)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return store, nil

	case domain.VectorBackendPgvector:
		store, err := pgvector.NewStore(ctx, settings.DSN, settings.Collection)
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.VectorBackendMemory:
		return memory.NewVectorStore(settings.Collection), nil

	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrConfig, settings.Backend)
	}
}
