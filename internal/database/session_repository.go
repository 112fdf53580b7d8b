package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/linguabot/pkg/models"
)

// SessionRepository keeps each user's single live session as kind + JSON payload
type SessionRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSessionRepository creates a new repository instance
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{db: DB, now: time.Now}
}

type sessionRow struct {
	Kind    string `db:"kind"`
	Payload string `db:"payload"`
}

// GetSession returns the user's state, idle when none is stored.
// A row that no longer decodes is dropped and reported as idle.
func (r *SessionRepository) GetSession(ctx context.Context, userID int64) (models.SessionState, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT kind, payload FROM user_state WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.IdleSession(userID), nil
	}
	if err != nil {
		return models.SessionState{}, errors.Wrapf(err, "failed to get session of user %d", userID)
	}

	var state models.SessionState
	if err := json.Unmarshal([]byte(row.Payload), &state); err == nil {
		state.UserID = userID
		if state.Kind == models.SessionKind(row.Kind) && state.Validate() == nil {
			return state, nil
		}
	}

	slog.Warn("discarding unreadable session", "user_id", userID, "kind", row.Kind)
	if err := r.ClearSession(ctx, userID); err != nil {
		return models.SessionState{}, err
	}
	return models.IdleSession(userID), nil
}

// SetSession replaces the user's state. Storing an idle state clears the slot.
func (r *SessionRepository) SetSession(ctx context.Context, userID int64, state models.SessionState) error {
	if state.Kind == models.SessionIdle {
		return r.ClearSession(ctx, userID)
	}

	state.UserID = userID
	payload, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}

	query := r.db.Rebind(`
		INSERT INTO user_state (user_id, kind, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			updated_at = excluded.updated_at`)

	if _, err := r.db.ExecContext(ctx, query, userID, string(state.Kind), string(payload), r.now().UTC()); err != nil {
		return errors.Wrapf(err, "failed to save session of user %d", userID)
	}
	return nil
}

// ClearSession removes the user's state
func (r *SessionRepository) ClearSession(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM user_state WHERE user_id = ?`), userID); err != nil {
		return errors.Wrapf(err, "failed to clear session of user %d", userID)
	}
	return nil
}
