package driving

import (
	"context"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// DatasetService loads the NISR tables and turns them into documents.
type DatasetService interface {
	// Documents reads both sources and builds documents, nutrition first.
	Documents(ctx context.Context) ([]domain.Document, error)

	// Summary describes the loaded datasets.
	Summary(ctx context.Context) (domain.DatasetSummary, error)
}
