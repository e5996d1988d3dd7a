package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// Ensure DatasetService implements the interface.
var _ driving.DatasetService = (*DatasetService)(nil)

// summaryListLimit caps the indicator and title lists in a summary.
const summaryListLimit = 10

// DatasetService reads NISR tables and builds documents from them.
type DatasetService struct {
	reader  driven.DatasetReader
	builder *DocumentBuilder
	columns domain.NutritionColumns
	survey  domain.SurveyColumns
}

// NewDatasetService creates a dataset service.
func NewDatasetService(reader driven.DatasetReader, builder *DocumentBuilder) *DatasetService {
	return &DatasetService{
		reader:  reader,
		builder: builder,
		columns: builder.nutrition,
		survey:  builder.survey,
	}
}

// Documents reads both sources and builds documents, nutrition first.
func (s *DatasetService) Documents(ctx context.Context) ([]domain.Document, error) {
	nutrition, surveys, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	docs := s.builder.Build(nutrition, surveys)
	logger.Info("Built %d documents (%d nutrition, %d survey)", len(docs), len(nutrition), len(surveys))
	return docs, nil
}

// Summary describes the loaded datasets.
func (s *DatasetService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	nutrition, surveys, err := s.load(ctx)
	if err != nil {
		return domain.DatasetSummary{}, err
	}

	years := distinct(nutrition, s.columns.Year, 0)
	sort.Strings(years)

	return domain.DatasetSummary{
		NutritionRecords: len(nutrition),
		YearsCovered:     years,
		Indicators:       distinct(nutrition, s.columns.Indicator, summaryListLimit),
		SurveyRecords:    len(surveys),
		SurveyTitles:     distinct(surveys, s.survey.Title, summaryListLimit),
		TotalDocuments:   len(nutrition) + len(surveys),
	}, nil
}

func (s *DatasetService) load(ctx context.Context) (nutrition, surveys []domain.Row, err error) {
	nutrition, err = s.reader.ReadNutrition(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read nutrition indicators: %w", err)
	}
	surveys, err = s.reader.ReadSurveys(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read survey catalogue: %w", err)
	}
	return nutrition, surveys, nil
}

// distinct returns unique non-missing values of column in first-seen order.
// A limit of zero means no limit.
func distinct(rows []domain.Row, column string, limit int) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range rows {
		v := r.Get(column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
