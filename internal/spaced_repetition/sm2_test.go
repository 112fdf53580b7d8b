package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newItem() models.VocabularyItem {
	return models.NewVocabularyItem(42, "apple", "яблоко", "An apple a day.", "english", testNow)
}

func TestApply_SuccessfulSequence(t *testing.T) {
	sm := NewSM2()
	item := newItem()

	require.NoError(t, sm.Apply(&item, QualityPerfect, testNow))
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 1, item.Repetitions)
	assert.InDelta(t, 2.6, item.Ease, 1e-9)
	assert.Equal(t, testNow.AddDate(0, 0, 1), item.NextDue)

	require.NoError(t, sm.Apply(&item, QualityPerfect, testNow))
	assert.Equal(t, 6, item.IntervalDays)
	assert.Equal(t, 2, item.Repetitions)
	assert.InDelta(t, 2.7, item.Ease, 1e-9)

	// round(6 * 2.7) = 16
	require.NoError(t, sm.Apply(&item, QualityCorrectHesitation, testNow))
	assert.Equal(t, 16, item.IntervalDays)
	assert.Equal(t, 3, item.Repetitions)
	assert.InDelta(t, 2.7, item.Ease, 1e-9)
	assert.Equal(t, testNow.AddDate(0, 0, 16), item.NextDue)
}

func TestApply_EaseFormula(t *testing.T) {
	tests := []struct {
		quality QualityResponse
		want    float64
	}{
		{QualityPerfect, 2.6},
		{QualityCorrectHesitation, 2.5},
		{QualityCorrectDifficult, 2.36},
	}

	for _, tt := range tests {
		item := newItem()
		require.NoError(t, NewSM2().Apply(&item, tt.quality, testNow))
		assert.InDelta(t, tt.want, item.Ease, 1e-9, "quality %d", tt.quality)
	}
}

func TestApply_EaseNeverBelowFloor(t *testing.T) {
	sm := NewSM2()
	item := newItem()
	item.Ease = 1.31

	for i := 0; i < 50; i++ {
		require.NoError(t, sm.Apply(&item, QualityCorrectDifficult, testNow))
		assert.GreaterOrEqual(t, item.Ease, 1.3)
	}
	assert.Equal(t, 1.3, item.Ease)
}

func TestApply_IntervalNonDecreasingAfterSecondSuccess(t *testing.T) {
	sm := NewSM2()
	for _, q := range []QualityResponse{QualityCorrectDifficult, QualityCorrectHesitation, QualityPerfect} {
		item := newItem()
		require.NoError(t, sm.Apply(&item, q, testNow))
		require.NoError(t, sm.Apply(&item, q, testNow))

		prev := item.IntervalDays
		for i := 0; i < 20; i++ {
			require.NoError(t, sm.Apply(&item, q, testNow))
			assert.GreaterOrEqual(t, item.IntervalDays, prev, "quality %d review %d", q, i)
			prev = item.IntervalDays
		}
	}
}

func TestApply_ForgettingResets(t *testing.T) {
	sm := NewSM2()
	for _, q := range []QualityResponse{QualityBlackout, QualityIncorrect, QualityIncorrectFamiliar} {
		item := newItem()
		item.Repetitions = 7
		item.IntervalDays = 120
		item.Ease = 2.1

		require.NoError(t, sm.Apply(&item, q, testNow))
		assert.Equal(t, 0, item.Repetitions)
		assert.Equal(t, 1, item.IntervalDays)
		assert.Equal(t, 2.1, item.Ease, "ease is unchanged on failure")
		assert.Equal(t, testNow.AddDate(0, 0, 1), item.NextDue)
	}
}

func TestApply_RejectsQualityOutOfRange(t *testing.T) {
	sm := NewSM2()
	for _, q := range []QualityResponse{-1, 6, 100} {
		item := newItem()
		before := item

		err := sm.Apply(&item, q, testNow)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Equal(t, before, item, "item must not change")
	}
}

func TestSelectDue(t *testing.T) {
	sm := NewSM2()
	mk := func(id int64, offset time.Duration) models.VocabularyItem {
		it := newItem()
		it.ID = id
		it.NextDue = testNow.Add(offset)
		return it
	}

	items := []models.VocabularyItem{
		mk(1, time.Hour),       // future
		mk(2, -48*time.Hour),   // overdue
		mk(3, 0),               // exactly now
		mk(4, -time.Hour),      // overdue
		mk(5, 24*time.Hour),    // future
		mk(6, -72*time.Hour),   // most overdue
	}

	due := sm.SelectDue(items, testNow, DuePageSize)
	var ids []int64
	for _, it := range due {
		ids = append(ids, it.ID)
		assert.False(t, it.NextDue.After(testNow))
	}
	assert.Equal(t, []int64{6, 2, 4, 3}, ids)
}

func TestSelectDue_CapsAtLimit(t *testing.T) {
	sm := NewSM2()
	var items []models.VocabularyItem
	for i := 0; i < 30; i++ {
		it := newItem()
		it.ID = int64(i)
		it.NextDue = testNow.Add(-time.Duration(i) * time.Hour)
		items = append(items, it)
	}

	due := sm.SelectDue(items, testNow, DuePageSize)
	require.Len(t, due, DuePageSize)
	assert.Equal(t, int64(29), due[0].ID)
}

func TestIsMastered(t *testing.T) {
	sm := NewSM2()
	item := newItem()
	assert.False(t, sm.IsMastered(&item))

	item.Repetitions = 5
	item.IntervalDays = 30
	assert.True(t, sm.IsMastered(&item))
}
