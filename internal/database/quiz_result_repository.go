package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/linguabot/pkg/models"
)

// QuizResultRepository handles database operations for finished quizzes
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository() *QuizResultRepository {
	return &QuizResultRepository{db: DB}
}

// Create inserts a finished quiz
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}
	if result.Answers == "" {
		result.Answers = "[]"
	}

	query := r.db.Rebind(`
		INSERT INTO quiz_results (user_id, session_id, mode, score, total, answers, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		result.UserID,
		result.SessionID,
		string(result.Mode),
		result.Score,
		result.Total,
		result.Answers,
		result.CompletedAt.UTC(),
	).Scan(&result.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to create quiz result %s", result.SessionID)
	}
	return nil
}

// ListByUser returns the user's most recent results first
func (r *QuizResultRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.QuizResult, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, session_id, mode, score, total, answers, completed_at
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?`)

	var results []models.QuizResult
	if err := r.db.SelectContext(ctx, &results, query, userID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list quiz results")
	}
	return results, nil
}
