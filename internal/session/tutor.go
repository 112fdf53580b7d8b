package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

// Tutor modes
const (
	TutorChat    = "chat"
	TutorGrammar = "grammar"
)

// StartTutor routes the user's free text to the tutor until they exit.
func (e *Engine) StartTutor(ctx context.Context, userID int64, mode string) error {
	if mode != TutorChat && mode != TutorGrammar {
		return errors.Wrapf(apperrors.ErrInvalidInput, "unknown tutor mode %q", mode)
	}
	return e.start(ctx, models.SessionState{
		UserID: userID,
		Kind:   models.SessionTutor,
		Tutor:  &models.TutorSession{Mode: mode},
	})
}

// TutorMode returns the active tutor mode, ErrSessionExpired when the user is not in one.
func (e *Engine) TutorMode(ctx context.Context, userID int64) (string, error) {
	state, err := e.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	if state.Kind != models.SessionTutor || state.Tutor == nil {
		return "", errors.Wrapf(apperrors.ErrSessionExpired, "no tutor session (current: %s)", state.Kind)
	}
	return state.Tutor.Mode, nil
}
