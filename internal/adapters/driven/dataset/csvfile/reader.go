// Package csvfile reads the NISR tables from local CSV files.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.DatasetReader = (*Reader)(nil)

const utf8BOM = "\ufeff"

// Reader loads the nutrition and survey tables from a data directory.
type Reader struct {
	nutritionPath string
	surveyPath    string
}

// NewReader creates a reader for files inside dir.
// Empty arguments fall back to the default directory and file names.
func NewReader(dir, nutritionFile, surveyFile string) *Reader {
	if dir == "" {
		dir = domain.DefaultDataDir
	}
	if nutritionFile == "" {
		nutritionFile = domain.DefaultNutritionFile
	}
	if surveyFile == "" {
		surveyFile = domain.DefaultSurveyFile
	}
	return &Reader{
		nutritionPath: filepath.Join(dir, nutritionFile),
		surveyPath:    filepath.Join(dir, surveyFile),
	}
}

// ReadNutrition returns every row of the nutrition indicators table.
func (r *Reader) ReadNutrition(ctx context.Context) ([]domain.Row, error) {
	return readFile(ctx, r.nutritionPath, "nutrition indicators")
}

// ReadSurveys returns every row of the survey catalogue.
func (r *Reader) ReadSurveys(ctx context.Context) ([]domain.Row, error) {
	return readFile(ctx, r.surveyPath, "survey metadata")
}

// Paths returns the nutrition and survey file paths.
func (r *Reader) Paths() (nutrition, surveys string) {
	return r.nutritionPath, r.surveyPath
}

func readFile(ctx context.Context, path, label string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("%s not found at %s", label, path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	logger.Info("Loaded %s: %d rows", label, len(rows))
	return rows, nil
}

// Parse reads a CSV table whose first record is the header.
// Short records leave trailing columns unset; extra cells are dropped.
// Records with no non-blank cell are skipped.
func Parse(ctx context.Context, in io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(bufio.NewReader(in))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	// last is the physical line on which the previous record started.
	last, _ := cr.FieldPos(0)
	var rows []domain.Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if err != nil {
			return nil, fmt.Errorf("read record after line %d: %w", last, err)
		}
		last, _ = cr.FieldPos(0)
		if row := toRow(header, record); row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// toRow maps a record onto the header. The first occurrence of a
// duplicated column name wins.
func toRow(header, record []string) domain.Row {
	row := make(domain.Row, len(header))
	blank := true
	for i, name := range header {
		if i >= len(record) || name == "" {
			continue
		}
		if _, dup := row[name]; dup {
			continue
		}
		row[name] = record[i]
		if strings.TrimSpace(record[i]) != "" {
			blank = false
		}
	}
	if blank {
		return nil
	}
	return row
}
