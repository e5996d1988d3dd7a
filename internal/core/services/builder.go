package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

// Document ID prefixes. The row index within its source is appended.
const (
	nutritionIDPrefix = "nutrition_"
	surveyIDPrefix    = "survey_"
)

// DocumentBuilder turns NISR table rows into searchable text documents.
// It has no side effects and is safe for concurrent use.
type DocumentBuilder struct {
	nutrition domain.NutritionColumns
	survey    domain.SurveyColumns
	defaults  domain.FieldDefaults
}

// NewDocumentBuilder creates a builder for the standard NISR column layout.
func NewDocumentBuilder() *DocumentBuilder {
	return NewDocumentBuilderWith(
		domain.DefaultNutritionColumns(),
		domain.DefaultSurveyColumns(),
		domain.DefaultFieldDefaults(),
	)
}

// NewDocumentBuilderWith creates a builder for a custom column layout.
func NewDocumentBuilderWith(
	nutrition domain.NutritionColumns,
	survey domain.SurveyColumns,
	defaults domain.FieldDefaults,
) *DocumentBuilder {
	return &DocumentBuilder{
		nutrition: nutrition,
		survey:    survey,
		defaults:  defaults,
	}
}

// Build returns nutrition documents followed by survey documents.
func (b *DocumentBuilder) Build(nutrition, surveys []domain.Row) []domain.Document {
	docs := make([]domain.Document, 0, len(nutrition)+len(surveys))
	docs = append(docs, b.BuildNutrition(nutrition)...)
	docs = append(docs, b.BuildSurveys(surveys)...)
	return docs
}

// BuildNutrition renders one document per nutrition indicator row.
func (b *DocumentBuilder) BuildNutrition(rows []domain.Row) []domain.Document {
	docs := make([]domain.Document, 0, len(rows))
	for i, row := range rows {
		docs = append(docs, b.nutritionDocument(i, row))
	}
	return docs
}

// BuildSurveys renders one document per survey catalogue row.
func (b *DocumentBuilder) BuildSurveys(rows []domain.Row) []domain.Document {
	docs := make([]domain.Document, 0, len(rows))
	for i, row := range rows {
		docs = append(docs, b.surveyDocument(i, row))
	}
	return docs
}

func (b *DocumentBuilder) nutritionDocument(i int, row domain.Row) domain.Document {
	c := b.nutrition
	indicator := row.GetOr(c.Indicator, b.defaults.Indicator)
	year := row.GetOr(c.Year, b.defaults.Year)
	value := row.GetOr(c.Value, b.defaults.Value)
	dimType := row.Get(c.DimensionType)
	dimName := row.Get(c.DimensionName)
	low := row.Get(c.Low)
	high := row.Get(c.High)

	var text strings.Builder
	fmt.Fprintf(&text, "Rwanda Nutrition Data (%s): %s", year, indicator)
	if dimType != "" && dimName != "" {
		fmt.Fprintf(&text, " for %s", dimName)
	}
	fmt.Fprintf(&text, ". Value: %s", value)
	if low != "" && high != "" {
		fmt.Fprintf(&text, " (Range: %s-%s)", low, high)
	}

	meta := domain.Metadata{
		domain.MetaSource:    domain.SourceNutrition,
		domain.MetaIndicator: indicator,
		domain.MetaYear:      parseNumber(year),
		domain.MetaCountry:   domain.CountryRwanda,
		domain.MetaType:      domain.DocumentTypeNutrition.String(),
		domain.MetaValue:     parseNumber(value),
	}
	if dimName != "" {
		meta[domain.MetaDimension] = dimName
	}
	if low != "" {
		meta[domain.MetaLow] = parseNumber(low)
	}
	if high != "" {
		meta[domain.MetaHigh] = parseNumber(high)
	}

	return domain.Document{
		ID:       nutritionIDPrefix + strconv.Itoa(i),
		Text:     text.String(),
		Metadata: meta,
	}
}

func (b *DocumentBuilder) surveyDocument(i int, row domain.Row) domain.Document {
	c := b.survey
	title := row.GetOr(c.Title, b.defaults.Title)
	authority := row.GetOr(c.Authority, b.defaults.Authority)
	start := row.Get(c.Start)
	end := row.Get(c.End)

	var text strings.Builder
	fmt.Fprintf(&text, "Rwanda Survey: %s. Conducted by %s", title, authority)
	if start != "" && end != "" {
		if start == end {
			fmt.Fprintf(&text, " in %s", start)
		} else {
			fmt.Fprintf(&text, " from %s to %s", start, end)
		}
	}

	meta := domain.Metadata{
		domain.MetaSource:      domain.SourceSurvey,
		domain.MetaSurveyTitle: title,
		domain.MetaAuthority:   authority,
		domain.MetaCountry:     domain.CountryRwanda,
		domain.MetaType:        domain.DocumentTypeSurvey.String(),
	}
	if start != "" {
		meta[domain.MetaYearStart] = parseNumber(start)
	}
	if end != "" {
		meta[domain.MetaYearEnd] = parseNumber(end)
	}

	return domain.Document{
		ID:       surveyIDPrefix + strconv.Itoa(i),
		Text:     text.String(),
		Metadata: meta,
	}
}

// parseNumber returns an int or float64 when s is numeric, otherwise s.
func parseNumber(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}
