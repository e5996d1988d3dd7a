package driven

import (
	"context"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// DatasetReader reads the raw NISR tables.
//
// A missing source is not an error: implementations log a warning and
// return zero rows.
type DatasetReader interface {
	// ReadNutrition returns every row of the nutrition indicators table.
	ReadNutrition(ctx context.Context) ([]domain.Row, error)

	// ReadSurveys returns every row of the survey catalogue table.
	ReadSurveys(ctx context.Context) ([]domain.Row, error)

	// Paths returns the locations of the nutrition and survey sources.
	Paths() (nutrition, surveys string)
}
