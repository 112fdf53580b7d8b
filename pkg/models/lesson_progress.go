package models

import "time"

// LessonProgress records that a user finished a lesson quiz in one language.
// Score keeps the best result over repeated runs.
type LessonProgress struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	Language    string    `json:"language" db:"language"`
	LessonKey   string    `json:"lesson_key" db:"lesson_key"`
	Score       int       `json:"score" db:"score"`
	Total       int       `json:"total" db:"total"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
