package session

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

// RoleplayStep carries the next scripted line. Prompt is empty once the script ends.
type RoleplayStep struct {
	ScenarioKey string
	Title       string
	Context     string
	Vocab       []string
	Prompt      string
	Step        int
	Total       int
	Summary     *RoleplaySummary
}

// RoleplaySummary closes a finished dialogue
type RoleplaySummary struct {
	ScenarioKey string
	Turns       int
}

// StartRoleplay opens the scenario and returns its first prompt.
func (e *Engine) StartRoleplay(ctx context.Context, userID int64, key string) (*RoleplayStep, error) {
	sc, err := e.scenarios.Scenario(key)
	if err != nil {
		return nil, err
	}
	if len(sc.Prompts) == 0 {
		return nil, errors.Wrapf(apperrors.ErrInsufficientContent, "scenario %q has no prompts", key)
	}

	state := models.SessionState{
		UserID:   userID,
		Kind:     models.SessionRoleplay,
		Roleplay: &models.RoleplaySession{ScenarioKey: sc.Key},
	}
	if err := e.start(ctx, state); err != nil {
		return nil, err
	}

	return &RoleplayStep{
		ScenarioKey: sc.Key,
		Title:       sc.Title,
		Context:     sc.Context,
		Vocab:       sc.Vocab,
		Prompt:      sc.Prompts[0],
		Total:       len(sc.Prompts),
	}, nil
}

// ReplyRoleplay accepts the learner's line and advances the script.
// The text itself is not evaluated.
func (e *Engine) ReplyRoleplay(ctx context.Context, userID int64, text string) (*RoleplayStep, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "empty roleplay reply")
	}

	var step *RoleplayStep

	err := e.step(ctx, userID, models.SessionRoleplay, func(state *models.SessionState) (bool, error) {
		rp := state.Roleplay
		sc, err := e.scenarios.Scenario(rp.ScenarioKey)
		if err != nil {
			return false, err
		}

		rp.CurrentStep++
		step = &RoleplayStep{
			ScenarioKey: sc.Key,
			Title:       sc.Title,
			Step:        rp.CurrentStep,
			Total:       len(sc.Prompts),
		}
		if rp.CurrentStep < len(sc.Prompts) {
			step.Prompt = sc.Prompts[rp.CurrentStep]
			return false, nil
		}

		step.Summary = &RoleplaySummary{ScenarioKey: sc.Key, Turns: len(sc.Prompts)}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}
