// Package session drives a user's single live interactive session: quizzes,
// flashcard decks, scripted roleplays and the tutor slot.
//
// Every operation loads the user's state, applies one transition and
// persists the result while holding that user's lock. A completed session
// is cleared back to idle before its summary is returned.
package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/content"
	"github.com/example/linguabot/internal/placement"
	"github.com/example/linguabot/internal/spaced_repetition"
	"github.com/example/linguabot/pkg/models"
)

// Store persists the per-user session slot. GetSession returns an idle
// state when the user has none.
type Store interface {
	GetSession(ctx context.Context, userID int64) (models.SessionState, error)
	SetSession(ctx context.Context, userID int64, state models.SessionState) error
	ClearSession(ctx context.Context, userID int64) error
}

// Reviewer applies a flashcard rating to the scheduling record.
type Reviewer interface {
	Review(ctx context.Context, itemID int64, quality spaced_repetition.QualityResponse) (*models.VocabularyItem, error)
}

// ScenarioSource supplies roleplay scripts.
type ScenarioSource interface {
	Scenario(key string) (content.Scenario, error)
}

// Engine is the interactive session state machine
type Engine struct {
	store     Store
	reviewer  Reviewer
	scenarios ScenarioSource
	locks     *userLocks
	newID     func() string
	placement func(correct, total int) placement.Tier
}

// NewEngine wires the engine to its ports
func NewEngine(store Store, reviewer Reviewer, scenarios ScenarioSource) *Engine {
	return &Engine{
		store:     store,
		reviewer:  reviewer,
		scenarios: scenarios,
		locks:     newUserLocks(),
		newID:     uuid.NewString,
		placement: placement.Placement,
	}
}

// Current returns the user's live session, idle when there is none.
func (e *Engine) Current(ctx context.Context, userID int64) (models.SessionState, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	return e.store.GetSession(ctx, userID)
}

// Exit abandons whatever the user is doing and returns the kind that was abandoned.
func (e *Engine) Exit(ctx context.Context, userID int64) (models.SessionKind, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	state, err := e.store.GetSession(ctx, userID)
	if err != nil {
		return "", err
	}
	if state.Kind == models.SessionIdle {
		return models.SessionIdle, nil
	}

	if err := e.store.ClearSession(ctx, userID); err != nil {
		return "", err
	}
	slog.Debug("session abandoned", "user_id", userID, "kind", state.Kind)
	return state.Kind, nil
}

// start replaces any live session with state.
func (e *Engine) start(ctx context.Context, state models.SessionState) error {
	if err := state.Validate(); err != nil {
		return errors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	unlock := e.locks.lock(state.UserID)
	defer unlock()

	if err := e.store.SetSession(ctx, state.UserID, state); err != nil {
		return err
	}
	slog.Debug("session started", "user_id", state.UserID, "kind", state.Kind)
	return nil
}

// step loads the user's session, requires it to be of kind and runs apply on it.
// When apply fails nothing is persisted. When it reports done the slot is cleared,
// otherwise the mutated state is written back.
func (e *Engine) step(ctx context.Context, userID int64, kind models.SessionKind, apply func(*models.SessionState) (bool, error)) error {
	unlock := e.locks.lock(userID)
	defer unlock()

	state, err := e.load(ctx, userID, kind)
	if err != nil {
		return err
	}
	done, err := apply(&state)
	if err != nil {
		return err
	}
	return e.persist(ctx, userID, state, done)
}

// load returns the user's session if it is of kind. The caller holds the user's lock.
func (e *Engine) load(ctx context.Context, userID int64, kind models.SessionKind) (models.SessionState, error) {
	state, err := e.store.GetSession(ctx, userID)
	if err != nil {
		return models.SessionState{}, err
	}
	if state.Kind != kind {
		return models.SessionState{}, errors.Wrapf(apperrors.ErrSessionExpired, "no %s session (current: %s)", kind, state.Kind)
	}
	if err := state.Validate(); err != nil {
		return models.SessionState{}, errors.Wrap(apperrors.ErrSessionExpired, err.Error())
	}
	return state, nil
}

// persist writes state back, or clears the slot when the session is done
func (e *Engine) persist(ctx context.Context, userID int64, state models.SessionState, done bool) error {
	if done {
		if err := e.store.ClearSession(ctx, userID); err != nil {
			return err
		}
		slog.Debug("session completed", "user_id", userID, "kind", state.Kind)
		return nil
	}
	return e.store.SetSession(ctx, userID, state)
}
