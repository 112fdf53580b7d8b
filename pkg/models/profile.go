package models

import "time"

// UserProfile represents a Telegram user using the bot
type UserProfile struct {
	UserID               int64      `json:"user_id" db:"user_id"` // Telegram User ID
	Username             string     `json:"username" db:"username"`
	FullName             string     `json:"full_name" db:"full_name"`
	Language             string     `json:"language" db:"language"` // Language being learned
	Level                string     `json:"level" db:"level"`       // CEFR label, A1..C2
	XP                   int        `json:"xp" db:"xp"`
	Streak               int        `json:"streak" db:"streak"`
	LastActive           *time.Time `json:"last_active" db:"last_active"`
	TotalCorrect         int        `json:"total_correct" db:"total_correct"`
	TotalQuestions       int        `json:"total_questions" db:"total_questions"`
	NotificationsEnabled bool       `json:"notifications_enabled" db:"notifications_enabled"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}

// Badge is an achievement earned once per user
type Badge struct {
	UserID   int64     `json:"user_id" db:"user_id"`
	BadgeID  string    `json:"badge_id" db:"badge_id"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`
}

// Badge identifiers.
const (
	BadgeQuizAce     = "quiz_ace"
	BadgeFirstLesson = "first_lesson"
	BadgeWordHoarder = "vocab_100"
)
