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

const vocabularyColumns = `id, user_id, term, meaning, example, language, ease, interval_days, repetitions, next_due, added_at`

// DueCount is the number of due words of one user
type DueCount struct {
	UserID int64 `db:"user_id"`
	Count  int   `db:"due"`
}

// VocabularyRepository handles database operations for saved words and their schedule
type VocabularyRepository struct {
	db *sqlx.DB
}

// NewVocabularyRepository creates a new repository instance
func NewVocabularyRepository() *VocabularyRepository {
	return &VocabularyRepository{db: DB}
}

// Create inserts a new word and fills in its ID
func (r *VocabularyRepository) Create(ctx context.Context, item *models.VocabularyItem) error {
	query := r.db.Rebind(`
		INSERT INTO vocabulary (user_id, term, meaning, example, language, ease, interval_days, repetitions, next_due, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		item.UserID,
		item.Term,
		item.Meaning,
		item.Example,
		item.Language,
		item.Ease,
		item.IntervalDays,
		item.Repetitions,
		item.NextDue.UTC(),
		item.AddedAt.UTC(),
	).Scan(&item.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to create vocabulary item %q", item.Term)
	}
	return nil
}

// GetVocabItem returns a word by ID
func (r *VocabularyRepository) GetVocabItem(ctx context.Context, id int64) (*models.VocabularyItem, error) {
	var item models.VocabularyItem
	err := r.db.GetContext(ctx, &item, r.db.Rebind(`SELECT `+vocabularyColumns+` FROM vocabulary WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "vocabulary item %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get vocabulary item %d", id)
	}
	return &item, nil
}

// GetByTerm returns the user's word with the given term in language
func (r *VocabularyRepository) GetByTerm(ctx context.Context, userID int64, language, term string) (*models.VocabularyItem, error) {
	var item models.VocabularyItem
	query := r.db.Rebind(`SELECT ` + vocabularyColumns + ` FROM vocabulary WHERE user_id = ? AND language = ? AND term = ?`)
	err := r.db.GetContext(ctx, &item, query, userID, language, term)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "vocabulary term %q (%s)", term, language)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get vocabulary term %q (%s)", term, language)
	}
	return &item, nil
}

// SaveVocabItem persists the scheduling fields of a reviewed word in one statement
func (r *VocabularyRepository) SaveVocabItem(ctx context.Context, item *models.VocabularyItem) error {
	query := r.db.Rebind(`
		UPDATE vocabulary SET
			ease = ?,
			interval_days = ?,
			repetitions = ?,
			next_due = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		item.Ease,
		item.IntervalDays,
		item.Repetitions,
		item.NextDue.UTC(),
		item.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to save vocabulary item %d", item.ID)
	}
	return expectOneRow(result, "vocabulary item", item.ID)
}

// UpdateContent rewrites the meaning and example of a word, keeping its schedule
func (r *VocabularyRepository) UpdateContent(ctx context.Context, item *models.VocabularyItem) error {
	query := r.db.Rebind(`UPDATE vocabulary SET meaning = ?, example = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, item.Meaning, item.Example, item.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to update vocabulary item %d", item.ID)
	}
	return expectOneRow(result, "vocabulary item", item.ID)
}

// ListDueItems returns words with next_due <= now, oldest first
func (r *VocabularyRepository) ListDueItems(ctx context.Context, userID int64, now time.Time, limit int) ([]models.VocabularyItem, error) {
	query := r.db.Rebind(`
		SELECT ` + vocabularyColumns + `
		FROM vocabulary
		WHERE user_id = ? AND next_due <= ?
		ORDER BY next_due ASC, id ASC
		LIMIT ?`)

	var items []models.VocabularyItem
	if err := r.db.SelectContext(ctx, &items, query, userID, now.UTC(), limit); err != nil {
		return nil, errors.Wrap(err, "failed to list due vocabulary")
	}
	return items, nil
}

// ListByUser returns the user's words, newest first. An empty language matches every
// language and a limit <= 0 returns all of them.
func (r *VocabularyRepository) ListByUser(ctx context.Context, userID int64, language string, limit int) ([]models.VocabularyItem, error) {
	query := `SELECT ` + vocabularyColumns + ` FROM vocabulary WHERE user_id = ?`
	args := []interface{}{userID}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY added_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var items []models.VocabularyItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list vocabulary")
	}
	return items, nil
}

// Delete removes one of the user's words
func (r *VocabularyRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM vocabulary WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return errors.Wrapf(err, "failed to delete vocabulary item %d", id)
	}
	return expectOneRow(result, "vocabulary item", id)
}

// CountDue returns how many of the user's words are due at now
func (r *VocabularyRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM vocabulary WHERE user_id = ? AND next_due <= ?`)
	if err := r.db.GetContext(ctx, &n, query, userID, now.UTC()); err != nil {
		return 0, errors.Wrap(err, "failed to count due vocabulary")
	}
	return n, nil
}

// DueCounts returns, for every user with reminders enabled, how many words are due at now
func (r *VocabularyRepository) DueCounts(ctx context.Context, now time.Time) ([]DueCount, error) {
	query := r.db.Rebind(`
		SELECT v.user_id AS user_id, COUNT(*) AS due
		FROM vocabulary v
		JOIN users u ON u.user_id = v.user_id
		WHERE u.notifications_enabled = ? AND v.next_due <= ?
		GROUP BY v.user_id
		ORDER BY v.user_id`)

	var counts []DueCount
	if err := r.db.SelectContext(ctx, &counts, query, true, now.UTC()); err != nil {
		return nil, errors.Wrap(err, "failed to count due vocabulary per user")
	}
	return counts, nil
}

// Stats summarises the user's deck
func (r *VocabularyRepository) Stats(ctx context.Context, userID int64, now time.Time) (*models.VocabularyStats, error) {
	query := r.db.Rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN next_due <= ? THEN 1 ELSE 0 END), 0) AS due,
			COALESCE(SUM(CASE WHEN repetitions >= ? AND interval_days >= ? THEN 1 ELSE 0 END), 0) AS mastered,
			COALESCE(AVG(ease), 0) AS avg_ease
		FROM vocabulary
		WHERE user_id = ?`)

	var stats models.VocabularyStats
	err := r.db.GetContext(ctx, &stats, query,
		now.UTC(),
		models.MasteredRepetitions,
		models.MasteredIntervalDays,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vocabulary stats")
	}
	return &stats, nil
}

func expectOneRow(result sql.Result, what string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.Wrapf(apperrors.ErrNotFound, "%s %d", what, id)
	}
	return nil
}
