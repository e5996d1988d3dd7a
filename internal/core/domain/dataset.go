package domain

import "strings"

// NutritionColumns names the columns read from the nutrition indicators table.
type NutritionColumns struct {
	Indicator     string
	Year          string
	Value         string
	DimensionType string
	DimensionName string
	Low           string
	High          string
}

// SurveyColumns names the columns read from the survey catalogue table.
type SurveyColumns struct {
	Title     string
	Authority string
	Start     string
	End       string
}

// DefaultNutritionColumns returns the WHO GHO export column names.
func DefaultNutritionColumns() NutritionColumns {
	return NutritionColumns{
		Indicator:     "GHO (DISPLAY)",
		Year:          "YEAR (DISPLAY)",
		Value:         "Value",
		DimensionType: "DIMENSION (TYPE)",
		DimensionName: "DIMENSION (NAME)",
		Low:           "Low",
		High:          "High",
	}
}

// DefaultSurveyColumns returns the NISR microdata catalogue column names.
func DefaultSurveyColumns() SurveyColumns {
	return SurveyColumns{
		Title:     "titl",
		Authority: "authenty",
		Start:     "data_coll_start",
		End:       "data_coll_end",
	}
}

// FieldDefaults lists the substitutes used when a row field is missing.
type FieldDefaults struct {
	Indicator string
	Year      string
	Value     string
	Title     string
	Authority string
}

// DefaultFieldDefaults returns the placeholder values used by the document builder.
func DefaultFieldDefaults() FieldDefaults {
	return FieldDefaults{
		Indicator: "Unknown Indicator",
		Year:      "Unknown Year",
		Value:     "N/A",
		Title:     "Unknown Survey",
		Authority: "NISR",
	}
}

// missingMarkers are cell values treated the same as an empty cell.
var missingMarkers = map[string]struct{}{
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// IsMissing reports whether a cell value should be treated as absent.
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := missingMarkers[strings.ToLower(v)]
	return ok
}

// Get returns the trimmed value of column, or "" if it is absent or missing.
func (r Row) Get(column string) string {
	v, ok := r[column]
	if !ok || IsMissing(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// GetOr returns the value of column, or fallback when it is missing.
func (r Row) GetOr(column, fallback string) string {
	if v := r.Get(column); v != "" {
		return v
	}
	return fallback
}
