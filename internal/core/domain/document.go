package domain

import (
	"fmt"
	"strconv"
)

// DocumentType classifies where a document was built from.
type DocumentType string

// Known document types.
const (
	// DocumentTypeNutrition is a single nutrition indicator observation.
	DocumentTypeNutrition DocumentType = "nutrition_data"

	// DocumentTypeSurvey is one entry from the NISR survey catalogue.
	DocumentTypeSurvey DocumentType = "survey_metadata"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeNutrition || t == DocumentTypeSurvey
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Metadata keys written by the document builder.
const (
	MetaSource      = "source"
	MetaIndicator   = "indicator"
	MetaYear        = "year"
	MetaValue       = "value"
	MetaDimension   = "dimension"
	MetaLow         = "low"
	MetaHigh        = "high"
	MetaCountry     = "country"
	MetaType        = "type"
	MetaSurveyTitle = "survey_title"
	MetaAuthority   = "authority"
	MetaYearStart   = "year_start"
	MetaYearEnd     = "year_end"
)

// Source names attached to documents.
const (
	SourceNutrition = "NISR Nutrition Indicators"
	SourceSurvey    = "NISR Survey Catalog"
	CountryRwanda   = "Rwanda"
)

// Metadata holds flat key/value pairs describing a document.
// Values are strings or numbers (int or float64).
type Metadata map[string]any

// String returns the value at key formatted as text, or "" when absent.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

// Has reports whether key is present with a non-empty value.
func (m Metadata) Has(key string) bool {
	return m.String(key) != ""
}

// FormatValue renders a metadata value without a trailing ".0" for whole numbers.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// Document is one searchable unit of text built from a dataset row.
// Documents are immutable once built.
type Document struct {
	// ID is unique across every source, e.g. "nutrition_12" or "survey_3".
	ID string `json:"id"`

	// Text is the natural-language rendering of the row.
	Text string `json:"text"`

	// Metadata describes where the text came from.
	Metadata Metadata `json:"metadata"`
}

// Type returns the document type recorded in metadata.
func (d Document) Type() DocumentType {
	return DocumentType(d.Metadata.String(MetaType))
}

// Row is one record of a tabular data source keyed by column name.
type Row map[string]string

// QueryResult is a document returned by similarity search.
type QueryResult struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`

	// Distance is the cosine distance to the query. Smaller is closer.
	Distance float64 `json:"distance"`
}

// IndexStats describes the vector collection.
type IndexStats struct {
	TotalDocuments int    `json:"total_documents"`
	EmbeddingModel string `json:"embedding_model"`
	CollectionName string `json:"collection_name"`
	Location       string `json:"db_path"`
}

// DatasetSummary describes the loaded datasets.
type DatasetSummary struct {
	NutritionRecords int      `json:"nutrition_records"`
	YearsCovered     []string `json:"years_covered"`
	Indicators       []string `json:"indicators"`
	SurveyRecords    int      `json:"survey_records"`
	SurveyTitles     []string `json:"survey_titles"`
	TotalDocuments   int      `json:"total_documents"`
}
