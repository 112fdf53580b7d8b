package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/placement"
	"github.com/example/linguabot/pkg/models"
)

// QuizAnswerEvent is a user's pick for one question
type QuizAnswerEvent struct {
	SessionID     string
	QuestionIndex int
	Choice        int
}

// QuizStep is what the caller presents after a quiz transition.
// Question is the next question to show, nil once the quiz is over.
type QuizStep struct {
	SessionID string
	Index     int
	Total     int
	Question  *models.Question

	// Set on answer steps
	Answered     bool
	Correct      bool
	CorrectIndex int
	CorrectText  string

	Summary *QuizSummary
}

// QuizSummary closes a finished quiz
type QuizSummary struct {
	SessionID string
	Mode      models.QuizMode
	LessonKey string
	Score     int
	Total     int
	Answers   []models.QuizAnswer
	// Tier is only set for exam mode
	Tier *placement.Tier
}

// Perfect reports whether every question was answered correctly.
func (s QuizSummary) Perfect() bool {
	return s.Total > 0 && s.Score == s.Total
}

// StartQuiz opens a quiz over a snapshot of questions, replacing any live session.
func (e *Engine) StartQuiz(ctx context.Context, userID int64, questions []models.Question, mode models.QuizMode, lessonKey string) (*QuizStep, error) {
	if len(questions) == 0 {
		return nil, errors.Wrap(apperrors.ErrInsufficientContent, "quiz has no questions")
	}
	if !mode.Valid() {
		return nil, errors.Wrapf(apperrors.ErrInvalidInput, "unknown quiz mode %q", mode)
	}

	snapshot := make([]models.Question, len(questions))
	for i, q := range questions {
		if len(q.Options) == 0 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, errors.Wrapf(apperrors.ErrInvalidInput, "question %d has no valid answer", i)
		}
		snapshot[i] = models.Question{
			Prompt:       q.Prompt,
			Options:      append([]string(nil), q.Options...),
			CorrectIndex: q.CorrectIndex,
		}
	}

	qs := &models.QuizSession{
		SessionID: e.newID(),
		Questions: snapshot,
		Mode:      mode,
		Answers:   []models.QuizAnswer{},
		LessonKey: lessonKey,
	}
	state := models.SessionState{UserID: userID, Kind: models.SessionQuiz, Quiz: qs}
	if err := e.start(ctx, state); err != nil {
		return nil, err
	}

	first := qs.Questions[0]
	return &QuizStep{
		SessionID: qs.SessionID,
		Index:     0,
		Total:     len(qs.Questions),
		Question:  &first,
	}, nil
}

// AnswerQuiz scores one answer. An answer for another session or for a
// question that is no longer current is treated as a replay and rejected
// with ErrSessionExpired so it is never scored twice.
func (e *Engine) AnswerQuiz(ctx context.Context, userID int64, ev QuizAnswerEvent) (*QuizStep, error) {
	var step *QuizStep

	err := e.step(ctx, userID, models.SessionQuiz, func(state *models.SessionState) (bool, error) {
		qs := state.Quiz
		if ev.SessionID != "" && ev.SessionID != qs.SessionID {
			return false, errors.Wrapf(apperrors.ErrSessionExpired, "quiz %s is not active", ev.SessionID)
		}
		if ev.QuestionIndex != qs.CurrentIndex || qs.CurrentIndex >= len(qs.Questions) {
			return false, errors.Wrapf(apperrors.ErrSessionExpired, "question %d already answered", ev.QuestionIndex)
		}

		q := qs.Questions[qs.CurrentIndex]
		if ev.Choice < 0 || ev.Choice >= len(q.Options) {
			return false, errors.Wrapf(apperrors.ErrStaleSession, "option %d of %d", ev.Choice, len(q.Options))
		}

		correct := ev.Choice == q.CorrectIndex
		if correct {
			qs.Score++
		}
		qs.Answers = append(qs.Answers, models.QuizAnswer{
			QuestionIndex: qs.CurrentIndex,
			ChosenIndex:   ev.Choice,
			Correct:       correct,
		})
		qs.CurrentIndex++

		step = &QuizStep{
			SessionID:    qs.SessionID,
			Index:        qs.CurrentIndex,
			Total:        len(qs.Questions),
			Answered:     true,
			Correct:      correct,
			CorrectIndex: q.CorrectIndex,
			CorrectText:  q.Answer(),
		}

		if qs.CurrentIndex < len(qs.Questions) {
			next := qs.Questions[qs.CurrentIndex]
			step.Question = &next
			return false, nil
		}

		step.Summary = e.summarizeQuiz(qs)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

func (e *Engine) summarizeQuiz(qs *models.QuizSession) *QuizSummary {
	sum := &QuizSummary{
		SessionID: qs.SessionID,
		Mode:      qs.Mode,
		LessonKey: qs.LessonKey,
		Score:     qs.Score,
		Total:     len(qs.Questions),
		Answers:   append([]models.QuizAnswer(nil), qs.Answers...),
	}
	if qs.Mode == models.QuizModeExam {
		tier := e.placement(sum.Score, sum.Total)
		sum.Tier = &tier
	}
	return sum
}
