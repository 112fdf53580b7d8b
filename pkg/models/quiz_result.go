package models

import "time"

// QuizResult is the stored outcome of a completed quiz session
type QuizResult struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	Mode        QuizMode  `json:"mode" db:"mode"`
	Score       int       `json:"score" db:"score"`
	Total       int       `json:"total" db:"total"`
	Answers     string    `json:"answers" db:"answers"` // JSON-encoded []QuizAnswer
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
