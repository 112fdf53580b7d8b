package spaced_repetition

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

// DuePageSize caps how many items a single review batch may contain.
const DuePageSize = 20

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Answers at or above this quality count as remembered
	PassThreshold QualityResponse
	// Ease factor never drops below this value
	MinEase float64
	// Interval after the first and second successful reviews
	FirstInterval  int
	SecondInterval int
}

// NewSM2 creates a new SM2 instance with the standard settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:  QualityCorrectDifficult,
		MinEase:        1.3,
		FirstInterval:  1,
		SecondInterval: 6,
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Valid reports whether q lies in [0,5].
func (q QualityResponse) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// ValidateQuality rejects ratings outside [0,5].
func ValidateQuality(q QualityResponse) error {
	if !q.Valid() {
		return errors.Wrapf(apperrors.ErrInvalidInput, "quality %d outside [0,5]", int(q))
	}
	return nil
}

// Apply updates the scheduling fields of item for a review rated quality at now.
func (sm *SM2) Apply(item *models.VocabularyItem, quality QualityResponse, now time.Time) error {
	if err := ValidateQuality(quality); err != nil {
		return err
	}

	if quality >= sm.PassThreshold {
		switch item.Repetitions {
		case 0:
			item.IntervalDays = sm.FirstInterval
		case 1:
			item.IntervalDays = sm.SecondInterval
		default:
			item.IntervalDays = int(math.Round(float64(item.IntervalDays) * item.Ease))
		}

		miss := float64(QualityPerfect - quality)
		item.Ease = math.Max(sm.MinEase, item.Ease+0.1-miss*(0.08+miss*0.02))
		item.Repetitions++
	} else {
		// Forgotten: start over, ease stays where it was
		item.IntervalDays = 1
		item.Repetitions = 0
	}

	item.NextDue = now.UTC().AddDate(0, 0, item.IntervalDays)
	return nil
}

// SelectDue returns the items with NextDue <= now, oldest first, at most limit of them
func (sm *SM2) SelectDue(items []models.VocabularyItem, now time.Time, limit int) []models.VocabularyItem {
	var due []models.VocabularyItem
	for _, it := range items {
		if it.IsDue(now) {
			due = append(due, it)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextDue.Before(due[j].NextDue)
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

// IsMastered determines if a word is considered "mastered"
func (sm *SM2) IsMastered(item *models.VocabularyItem) bool {
	return item.Repetitions >= models.MasteredRepetitions && item.IntervalDays >= models.MasteredIntervalDays
}
