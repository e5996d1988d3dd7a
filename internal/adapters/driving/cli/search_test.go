package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
)

func sampleResults() []domain.QueryResult {
	return []domain.QueryResult{
		{
			ID:   "nutrition_4",
			Text: "In 2020, the Stunting prevalence in Rwanda was 33.1%.",
			Metadata: domain.Metadata{
				domain.MetaType: "nutrition_data",
				domain.MetaYear: 2020,
			},
			Distance: 0.1234,
		},
		{
			ID:   "survey_1",
			Text: "Survey: Demographic and Health Survey 2019-20.",
			Metadata: domain.Metadata{
				domain.MetaType: "survey_metadata",
			},
			Distance: 0.4,
		},
	}
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestApp(t, nil)
	defer cleanup()

	_, err := executeCommand("search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	a, _, index, _ := newTestApp()
	index.results = sampleResults()
	cleanup := setupTestApp(t, a)
	defer cleanup()

	out, err := executeCommand("search", "stunting rate")

	require.NoError(t, err)
	assert.Contains(t, out, "[1] nutrition_4 (nutrition_data, 2020) distance 0.1234")
	assert.Contains(t, out, "33.1%")
	assert.Contains(t, out, "[2] survey_1")
	assert.Equal(t, []string{"stunting rate"}, index.searches)
	assert.Equal(t, 5, index.opts.K)
	assert.Nil(t, index.opts.Filter)
}

func TestSearchCmd_TypeFilter(t *testing.T) {
	a, _, index, _ := newTestApp()
	cleanup := setupTestApp(t, a)
	defer cleanup()

	_, err := executeCommand("search", "--type", "survey_metadata", "-n", "3", "surveys")

	require.NoError(t, err)
	assert.Equal(t, 3, index.opts.K)
	assert.Equal(t, map[string]string{"type": "survey_metadata"}, index.opts.Filter)
}

func TestSearchCmd_UnknownType(t *testing.T) {
	a, _, index, _ := newTestApp()
	cleanup := setupTestApp(t, a)
	defer cleanup()

	_, err := executeCommand("search", "--type", "census", "surveys")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown document type "census"`)
	assert.Empty(t, index.searches)
}

func TestSearchCmd_NoResults(t *testing.T) {
	a, _, _, _ := newTestApp()
	cleanup := setupTestApp(t, a)
	defer cleanup()

	out, err := executeCommand("search", "anything")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	a, _, index, _ := newTestApp()
	index.results = sampleResults()
	cleanup := setupTestApp(t, a)
	defer cleanup()

	out, err := executeCommand("search", "--json", "stunting")
	require.NoError(t, err)

	var got []domain.QueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "nutrition_4", got[0].ID)
}

func TestSearchCmd_JSONEmptyIsArray(t *testing.T) {
	a, _, _, _ := newTestApp()
	cleanup := setupTestApp(t, a)
	defer cleanup()

	out, err := executeCommand("search", "--json", "stunting")

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	a, _, index, _ := newTestApp()
	index.err = errors.New("store offline")
	cleanup := setupTestApp(t, a)
	defer cleanup()

	_, err := executeCommand("search", "stunting")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
	assert.Contains(t, err.Error(), "store offline")
}
