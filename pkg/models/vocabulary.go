package models

import "time"

// Default scheduling values for a freshly saved word.
const (
	DefaultEase         = 2.5
	DefaultIntervalDays = 1
)

// A word counts as mastered once it has this many consecutive successful
// reviews and an interval of at least this many days.
const (
	MasteredRepetitions  = 5
	MasteredIntervalDays = 30
)

// VocabularyItem is a word saved by a user together with its SM-2 scheduling state
type VocabularyItem struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Term         string    `json:"term" db:"term"`
	Meaning      string    `json:"meaning" db:"meaning"`
	Example      string    `json:"example" db:"example"`
	Language     string    `json:"language" db:"language"`
	Ease         float64   `json:"ease" db:"ease"`                   // SM-2 ease factor, never below 1.3
	IntervalDays int       `json:"interval_days" db:"interval_days"` // Current interval in days
	Repetitions  int       `json:"repetitions" db:"repetitions"`     // Consecutive successful reviews
	NextDue      time.Time `json:"next_due" db:"next_due"`
	AddedAt      time.Time `json:"added_at" db:"added_at"`
}

// NewVocabularyItem returns an item with default scheduling state that is due immediately.
func NewVocabularyItem(userID int64, term, meaning, example, language string, now time.Time) VocabularyItem {
	now = now.UTC()
	return VocabularyItem{
		UserID:       userID,
		Term:         term,
		Meaning:      meaning,
		Example:      example,
		Language:     language,
		Ease:         DefaultEase,
		IntervalDays: DefaultIntervalDays,
		NextDue:      now,
		AddedAt:      now,
	}
}

// IsDue reports whether the item should be reviewed at now.
func (v *VocabularyItem) IsDue(now time.Time) bool {
	return !now.Before(v.NextDue)
}

// ReviewOutcome is a single rating submitted for an item
type ReviewOutcome struct {
	ItemID  int64
	Quality int
}

// VocabularyStats summarises a user's deck
type VocabularyStats struct {
	Total    int     `json:"total" db:"total"`
	Due      int     `json:"due" db:"due"`
	Mastered int     `json:"mastered" db:"mastered"`
	AvgEase  float64 `json:"avg_ease" db:"avg_ease"`
}
