package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

type fakeStore struct {
	nextID int64
	items  map[string]*models.VocabularyItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[string]*models.VocabularyItem)}
}

func key(userID int64, language, term string) string {
	return fmt.Sprintf("%d/%s/%s", userID, language, term)
}

func (s *fakeStore) GetByTerm(_ context.Context, userID int64, language, term string) (*models.VocabularyItem, error) {
	it, ok := s.items[key(userID, language, term)]
	if !ok {
		return nil, fmt.Errorf("term %q: %w", term, apperrors.ErrNotFound)
	}
	cp := *it
	return &cp, nil
}

func (s *fakeStore) Create(_ context.Context, item *models.VocabularyItem) error {
	s.nextID++
	item.ID = s.nextID
	cp := *item
	s.items[key(item.UserID, item.Language, item.Term)] = &cp
	return nil
}

func (s *fakeStore) UpdateContent(_ context.Context, item *models.VocabularyItem) error {
	cp := *item
	s.items[key(item.UserID, item.Language, item.Term)] = &cp
	return nil
}

var importNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestImporter(store Store) *Importer {
	im := NewImporter(store)
	im.now = func() time.Time { return importNow }
	return im
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &r))
	}
	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportFile_Excel(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Word", "Meaning", "Example"},
		{"apple", "a round fruit", "An apple a day."},
		{"go (went, gone)", "to move", ""},
		{"", "orphan meaning", ""},
		{"Fruit"},
	})

	store := newFakeStore()
	res, err := newTestImporter(store).ImportFile(context.Background(), path, DefaultImportConfig(7))
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalProcessed)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Row 4")

	apple, err := store.GetByTerm(context.Background(), 7, "english", "apple")
	require.NoError(t, err)
	assert.Equal(t, "An apple a day.", apple.Example)
	assert.Equal(t, models.DefaultEase, apple.Ease)
	assert.True(t, apple.NextDue.Equal(importNow))

	_, err = store.GetByTerm(context.Background(), 7, "english", "go")
	assert.NoError(t, err)
}

func TestImport_CSVUpdatesWithoutResettingSchedule(t *testing.T) {
	store := newFakeStore()
	im := newTestImporter(store)
	ctx := context.Background()

	first := "term,meaning\ncat,a small pet\ndog,a loyal pet\n"
	res, err := im.Import(ctx, strings.NewReader(first), FormatCSV, DefaultImportConfig(1))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	cat := store.items[key(1, "english", "cat")]
	cat.Repetitions = 3
	cat.IntervalDays = 16

	second := "term,meaning,example\ncat,a small furry pet,The cat sleeps.\ndog,a loyal pet\nAnimals,,\n"
	res, err = im.Import(ctx, strings.NewReader(second), FormatCSV, DefaultImportConfig(1))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.Errors)

	cat = store.items[key(1, "english", "cat")]
	assert.Equal(t, "a small furry pet", cat.Meaning)
	assert.Equal(t, "The cat sleeps.", cat.Example)
	assert.Equal(t, 3, cat.Repetitions)
	assert.Equal(t, 16, cat.IntervalDays)
}

func TestImport_KeepsLanguagesApart(t *testing.T) {
	store := newFakeStore()
	im := newTestImporter(store)
	ctx := context.Background()

	spanish := DefaultImportConfig(1)
	spanish.Language = "spanish"
	res, err := im.Import(ctx, strings.NewReader("term,meaning\ncasa,house\n"), FormatCSV, spanish)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	italian := DefaultImportConfig(1)
	italian.Language = "italian"
	res, err = im.Import(ctx, strings.NewReader("term,meaning\ncasa,home\n"), FormatCSV, italian)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)

	assert.Equal(t, "house", store.items[key(1, "spanish", "casa")].Meaning)
	assert.Equal(t, "home", store.items[key(1, "italian", "casa")].Meaning)
}

func TestImport_Errors(t *testing.T) {
	im := newTestImporter(newFakeStore())
	ctx := context.Background()

	_, err := im.Import(ctx, strings.NewReader("a,b"), FormatCSV, ImportConfig{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = im.Import(ctx, strings.NewReader("a,b"), "pdf", DefaultImportConfig(1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = im.Import(ctx, strings.NewReader("not a zip"), FormatXLSX, DefaultImportConfig(1))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err = im.ImportFile(ctx, path, DefaultImportConfig(1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestFormatFromName(t *testing.T) {
	for name, want := range map[string]string{"a.xlsx": FormatXLSX, "B.CSV": FormatCSV, "c.xlsm": FormatXLSX} {
		got, err := FormatFromName(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 2, columnToIndex("c"))
	assert.Equal(t, 26, columnToIndex("AA"))
	assert.Equal(t, -1, columnToIndex("1"))
}
