package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/linguabot/pkg/models"
)

// LessonRepository tracks which lessons users have finished
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new repository instance
func NewLessonRepository() *LessonRepository {
	return &LessonRepository{db: DB}
}

// MarkDone records a finished lesson and reports whether it was finished for the first time.
// Repeating a lesson keeps the best score and moves completed_at forward.
func (r *LessonRepository) MarkDone(ctx context.Context, p *models.LessonProgress) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var seen int
	err = tx.GetContext(ctx, &seen, tx.Rebind(`
		SELECT COUNT(*) FROM lesson_progress WHERE user_id = ? AND language = ? AND lesson_key = ?`),
		p.UserID, p.Language, p.LessonKey)
	if err != nil {
		return false, errors.Wrapf(err, "failed to look up lesson %s", p.LessonKey)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO lesson_progress (user_id, language, lesson_key, score, total, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, language, lesson_key) DO UPDATE SET
			score = CASE WHEN excluded.score > lesson_progress.score THEN excluded.score ELSE lesson_progress.score END,
			total = CASE WHEN excluded.score > lesson_progress.score THEN excluded.total ELSE lesson_progress.total END,
			completed_at = excluded.completed_at`),
		p.UserID, p.Language, p.LessonKey, p.Score, p.Total, p.CompletedAt.UTC())
	if err != nil {
		return false, errors.Wrapf(err, "failed to mark lesson %s done", p.LessonKey)
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "failed to commit lesson progress")
	}
	return seen == 0, nil
}

// Completed returns the keys of the lessons the user finished in language
func (r *LessonRepository) Completed(ctx context.Context, userID int64, language string) (map[string]bool, error) {
	var keys []string
	query := r.db.Rebind(`SELECT lesson_key FROM lesson_progress WHERE user_id = ? AND language = ?`)
	if err := r.db.SelectContext(ctx, &keys, query, userID, language); err != nil {
		return nil, errors.Wrap(err, "failed to list completed lessons")
	}
	done := make(map[string]bool, len(keys))
	for _, k := range keys {
		done[k] = true
	}
	return done, nil
}

// CountDone returns how many distinct lessons the user finished across all languages
func (r *LessonRepository) CountDone(ctx context.Context, userID int64) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM lesson_progress WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, errors.Wrap(err, "failed to count completed lessons")
	}
	return n, nil
}
