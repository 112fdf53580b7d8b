// Package excel imports vocabulary lists from Excel or CSV files into a user's deck.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

// Store is the vocabulary persistence the importer writes to
type Store interface {
	GetByTerm(ctx context.Context, userID int64, language, term string) (*models.VocabularyItem, error)
	Create(ctx context.Context, item *models.VocabularyItem) error
	UpdateContent(ctx context.Context, item *models.VocabularyItem) error
}

// Supported formats
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	UserID        int64  // Owner of the imported words
	Language      string // Language the words belong to
	TermColumn    string // Column with the word
	MeaningColumn string // Column with the meaning or translation
	ExampleColumn string // Column with an example sentence, optional
	SheetName     string // Sheet to import, the first sheet when empty
	StartRow      int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(userID int64) ImportConfig {
	return ImportConfig{
		UserID:        userID,
		Language:      "english",
		TermColumn:    "A",
		MeaningColumn: "B",
		ExampleColumn: "C",
		StartRow:      2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer loads rows into a vocabulary store
type Importer struct {
	store Store
	now   func() time.Time
}

// NewImporter creates an importer writing to store
func NewImporter(store Store) *Importer {
	return &Importer{store: store, now: time.Now}
}

// FormatFromName picks the format from a file name's extension
func FormatFromName(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", errors.Wrapf(apperrors.ErrInvalidInput, "unsupported file %q, expected .xlsx or .csv", name)
}

// ImportFile imports words from an Excel or CSV file on disk
func (im *Importer) ImportFile(ctx context.Context, path string, cfg ImportConfig) (*ImportResult, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open import file")
	}
	defer f.Close()

	return im.Import(ctx, f, format, cfg)
}

// Import reads rows in the given format from r and stores them
func (im *Importer) Import(ctx context.Context, r io.Reader, format string, cfg ImportConfig) (*ImportResult, error) {
	if cfg.UserID == 0 {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "import needs a user")
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readExcel(r, cfg.SheetName)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, errors.Wrapf(apperrors.ErrInvalidInput, "unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		term := cleanWord(cell(row, cfg.TermColumn))
		meaning := strings.TrimSpace(cell(row, cfg.MeaningColumn))
		example := strings.TrimSpace(cell(row, cfg.ExampleColumn))

		// Blank lines and section headings such as "Verbs,," carry no meaning
		if meaning == "" && example == "" {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		if err := im.processWord(ctx, cfg, term, meaning, example, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

func readExcel(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get rows of sheet %q", sheet)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "error reading CSV")
	}
	return rows, nil
}

// processWord creates the word or refreshes the content of an existing one.
// Scheduling state of existing words is never reset.
func (im *Importer) processWord(ctx context.Context, cfg ImportConfig, term, meaning, example string, result *ImportResult) error {
	if term == "" {
		return errors.New("word cannot be empty")
	}
	if meaning == "" {
		return errors.New("meaning cannot be empty")
	}

	existing, err := im.store.GetByTerm(ctx, cfg.UserID, cfg.Language, term)
	switch {
	case err == nil:
		if existing.Meaning == meaning && existing.Example == example {
			result.Skipped++
			return nil
		}
		existing.Meaning = meaning
		existing.Example = example
		if err := im.store.UpdateContent(ctx, existing); err != nil {
			return errors.Wrap(err, "failed to update word")
		}
		result.Updated++
		return nil
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return errors.Wrap(err, "failed to look up word")
	}

	item := models.NewVocabularyItem(cfg.UserID, term, meaning, example, cfg.Language, im.now())
	if err := im.store.Create(ctx, &item); err != nil {
		return errors.Wrap(err, "failed to create word")
	}
	result.Created++
	return nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

// cleanWord drops notes in parentheses such as "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
