package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

const profileColumns = `user_id, username, full_name, language, level, xp, streak, last_active,
	total_correct, total_questions, notifications_enabled, created_at`

// ProfileRepository handles database operations for user profiles and badges
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new repository instance
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{db: DB}
}

// Ensure creates the profile on first contact and refreshes the Telegram names afterwards
func (r *ProfileRepository) Ensure(ctx context.Context, userID int64, username, fullName string, now time.Time) (*models.UserProfile, error) {
	query := r.db.Rebind(`
		INSERT INTO users (user_id, username, full_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			full_name = excluded.full_name`)

	if _, err := r.db.ExecContext(ctx, query, userID, username, fullName, now.UTC()); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure user %d", userID)
	}
	return r.Get(ctx, userID)
}

// Get returns a profile by Telegram user ID
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+profileColumns+` FROM users WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "user %d", userID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %d", userID)
	}
	return &p, nil
}

// AddXP adds delta to the user's experience points
func (r *ProfileRepository) AddXP(ctx context.Context, userID int64, delta int) error {
	return r.update(ctx, userID, `UPDATE users SET xp = xp + ? WHERE user_id = ?`, delta, userID)
}

// SetLevel stores the CEFR label of the user
func (r *ProfileRepository) SetLevel(ctx context.Context, userID int64, level string) error {
	return r.update(ctx, userID, `UPDATE users SET level = ? WHERE user_id = ?`, level, userID)
}

// SetLanguage stores the language the user is learning
func (r *ProfileRepository) SetLanguage(ctx context.Context, userID int64, language string) error {
	return r.update(ctx, userID, `UPDATE users SET language = ? WHERE user_id = ?`, language, userID)
}

// SetNotifications turns review reminders on or off
func (r *ProfileRepository) SetNotifications(ctx context.Context, userID int64, enabled bool) error {
	return r.update(ctx, userID, `UPDATE users SET notifications_enabled = ? WHERE user_id = ?`, enabled, userID)
}

// RecordAnswers adds to the user's answered and correct question totals
func (r *ProfileRepository) RecordAnswers(ctx context.Context, userID int64, correct, total int) error {
	return r.update(ctx, userID,
		`UPDATE users SET total_correct = total_correct + ?, total_questions = total_questions + ? WHERE user_id = ?`,
		correct, total, userID)
}

// Touch marks the user active at now and returns the updated streak
func (r *ProfileRepository) Touch(ctx context.Context, userID int64, now time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var current struct {
		Streak     int        `db:"streak"`
		LastActive *time.Time `db:"last_active"`
	}
	err = tx.GetContext(ctx, &current, tx.Rebind(`SELECT streak, last_active FROM users WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrapf(apperrors.ErrNotFound, "user %d", userID)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get streak of user %d", userID)
	}

	streak := NextStreak(current.LastActive, current.Streak, now)
	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET streak = ?, last_active = ? WHERE user_id = ?`), streak, now.UTC(), userID)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to update streak of user %d", userID)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit streak")
	}
	return streak, nil
}

// NextStreak computes the daily streak after activity at now.
// Same UTC day keeps it, the following day extends it, a longer gap restarts it.
func NextStreak(lastActive *time.Time, streak int, now time.Time) int {
	if lastActive == nil || streak <= 0 {
		return 1
	}
	last := truncateDay(lastActive.UTC())
	today := truncateDay(now.UTC())

	switch {
	case !today.After(last):
		return streak
	case last.AddDate(0, 0, 1).Equal(today):
		return streak + 1
	default:
		return 1
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AwardBadge grants a badge once and reports whether it was new
func (r *ProfileRepository) AwardBadge(ctx context.Context, userID int64, badgeID string, now time.Time) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO badges (user_id, badge_id, earned_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, badge_id) DO NOTHING`)

	result, err := r.db.ExecContext(ctx, query, userID, badgeID, now.UTC())
	if err != nil {
		return false, errors.Wrapf(err, "failed to award badge %s", badgeID)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// Badges lists the user's badges, oldest first
func (r *ProfileRepository) Badges(ctx context.Context, userID int64) ([]models.Badge, error) {
	var badges []models.Badge
	query := r.db.Rebind(`SELECT user_id, badge_id, earned_at FROM badges WHERE user_id = ? ORDER BY earned_at, badge_id`)
	if err := r.db.SelectContext(ctx, &badges, query, userID); err != nil {
		return nil, errors.Wrap(err, "failed to list badges")
	}
	return badges, nil
}

// Leaderboard returns the top users by XP
func (r *ProfileRepository) Leaderboard(ctx context.Context, limit int) ([]models.UserProfile, error) {
	var users []models.UserProfile
	query := r.db.Rebind(`SELECT ` + profileColumns + ` FROM users ORDER BY xp DESC, user_id ASC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to get leaderboard")
	}
	return users, nil
}

func (r *ProfileRepository) update(ctx context.Context, userID int64, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return errors.Wrapf(err, "failed to update user %d", userID)
	}
	return expectOneRow(result, "user", userID)
}

// CountUsers returns how many users have talked to the bot
func (r *ProfileRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return n, nil
}
