package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return errors.New("invalid callback data: required fields are missing")
	}

	// Always send an answer to the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		slog.Warn("failed to answer callback", "error", err)
	}

	ev, err := ParseCallback(callback.Data)
	if err != nil {
		return err
	}

	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	switch ev.Kind {
	case EventMenu:
		return b.handleMenu(ctx, chatID, userID, ev.Action)
	case EventQuizAnswer:
		return b.handleQuizAnswer(ctx, chatID, userID, ev.Answer)
	case EventFlashcardShow:
		return b.handleFlashcardShow(ctx, chatID, userID, ev.ItemID)
	case EventFlashcardRate:
		return b.handleFlashcardRate(ctx, chatID, userID, ev.Rating)
	case EventRoleplay:
		return b.startRoleplay(ctx, chatID, userID, ev.Key)
	case EventTutor:
		return b.startTutor(ctx, chatID, userID, ev.Mode)
	case EventLesson:
		return b.startLesson(ctx, chatID, userID, ev.Level, ev.Key)
	}
	return errors.Wrapf(apperrors.ErrInvalidInput, "unhandled event kind %d", ev.Kind)
}

func (b *Bot) handleMenu(ctx context.Context, chatID, userID int64, action string) error {
	switch action {
	case actionMenu:
		return b.showMainMenu(chatID)
	case actionReview:
		return b.startReview(ctx, chatID, userID)
	case actionQuiz:
		return b.startVocabularyQuiz(ctx, chatID, userID)
	case actionExam:
		return b.startExam(ctx, chatID, userID)
	case actionChallenge:
		return b.startChallenge(ctx, chatID, userID)
	case actionLessons:
		return b.showLessons(ctx, chatID, userID)
	case actionRoleplay:
		return b.reply(chatID, renderScenarioMenu(b.deps.Catalog.Scenarios()))
	case actionTutor:
		return b.reply(chatID, renderTutorMenu())
	case actionStats:
		return b.handleStats(ctx, chatID, userID)
	case actionDeck:
		return b.handleDeck(ctx, chatID, userID)
	case actionExit:
		return b.handleExit(ctx, chatID, userID)
	case actionHelp:
		return b.reply(chatID, reply{Text: helpText, Buttons: backButtons()})
	}
	return b.sendText(chatID, "⚠️ Unknown action")
}

func (b *Bot) handleQuizAnswer(ctx context.Context, chatID, userID int64, ev session.QuizAnswerEvent) error {
	step, err := b.deps.Engine.AnswerQuiz(ctx, userID, ev)
	if err != nil {
		return err
	}
	if step.Correct {
		b.addXP(ctx, userID, b.config.Rewards.QuizCorrect)
	}

	var extra []string
	if step.Summary != nil {
		extra = b.completeQuiz(ctx, userID, step.Summary)
	}
	return b.reply(chatID, renderQuizStep(step, b.config.Rewards.QuizCorrect, extra))
}

// completeQuiz stores the result and hands out level, badges and bonus XP.
// The quiz is already over, so failures are logged rather than returned.
func (b *Bot) completeQuiz(ctx context.Context, userID int64, sum *session.QuizSummary) []string {
	var lines []string
	now := b.now()

	answers, err := json.Marshal(sum.Answers)
	if err != nil {
		slog.Error("failed to encode quiz answers", "user_id", userID, "error", err)
		answers = []byte("[]")
	}
	result := &models.QuizResult{
		UserID:      userID,
		SessionID:   sum.SessionID,
		Mode:        sum.Mode,
		Score:       sum.Score,
		Total:       sum.Total,
		Answers:     string(answers),
		CompletedAt: now,
	}
	if err := b.deps.Results.Create(ctx, result); err != nil {
		slog.Error("failed to store quiz result", "user_id", userID, "session_id", sum.SessionID, "error", err)
	}
	if err := b.deps.Profiles.RecordAnswers(ctx, userID, sum.Score, sum.Total); err != nil {
		slog.Error("failed to record answers", "user_id", userID, "error", err)
	}

	if sum.Tier != nil {
		if err := b.deps.Profiles.SetLevel(ctx, userID, sum.Tier.String()); err != nil {
			slog.Error("failed to set level", "user_id", userID, "level", sum.Tier.String(), "error", err)
		}
	}

	if sum.Perfect() {
		b.addXP(ctx, userID, b.config.Rewards.PerfectQuiz)
		lines = append(lines, fmt.Sprintf("⭐ Perfect score bonus: +%d XP", b.config.Rewards.PerfectQuiz))
		if b.awardBadge(ctx, userID, models.BadgeQuizAce) {
			lines = append(lines, "🏅 New badge: "+badgeName(models.BadgeQuizAce)+"!")
		}
	}

	if sum.Mode == models.QuizModeLesson {
		b.markLessonDone(ctx, userID, sum, now)
		b.addXP(ctx, userID, b.config.Rewards.LessonComplete)
		lines = append(lines, fmt.Sprintf("📚 Lesson complete: +%d XP", b.config.Rewards.LessonComplete))
		if b.awardBadge(ctx, userID, models.BadgeFirstLesson) {
			lines = append(lines, "🏅 New badge: "+badgeName(models.BadgeFirstLesson)+"!")
		}
	}
	return lines
}

// markLessonDone records the lesson under the language the user is learning now
func (b *Bot) markLessonDone(ctx context.Context, userID int64, sum *session.QuizSummary, now time.Time) {
	if sum.LessonKey == "" {
		return
	}
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		slog.Error("failed to load profile for lesson progress", "user_id", userID, "error", err)
		return
	}
	isNew, err := b.deps.Lessons.MarkDone(ctx, &models.LessonProgress{
		UserID:      userID,
		Language:    p.Language,
		LessonKey:   sum.LessonKey,
		Score:       sum.Score,
		Total:       sum.Total,
		CompletedAt: now,
	})
	if err != nil {
		slog.Error("failed to record lesson", "user_id", userID, "lesson", sum.LessonKey, "error", err)
		return
	}
	if isNew {
		slog.Info("lesson finished", "user_id", userID, "lesson", sum.LessonKey, "language", p.Language)
	}
}

func (b *Bot) handleFlashcardShow(ctx context.Context, chatID, userID, itemID int64) error {
	item, err := b.ownItem(ctx, userID, itemID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// The current card was deleted after it was shown
		step, skipErr := b.deps.Engine.SkipFlashcard(ctx, userID, itemID)
		if skipErr != nil {
			return err
		}
		return b.continueDeck(ctx, chatID, userID, step)
	}
	if err != nil {
		return err
	}
	return b.reply(chatID, renderCardBack(item))
}

func (b *Bot) handleFlashcardRate(ctx context.Context, chatID, userID int64, rating session.FlashcardRating) error {
	step, err := b.deps.Engine.RateFlashcard(ctx, userID, rating)
	if err != nil {
		return err
	}
	return b.continueDeck(ctx, chatID, userID, step)
}

// continueDeck reports step and shows the next card, skipping cards that were
// deleted meanwhile, or the summary once the deck is done.
func (b *Bot) continueDeck(ctx context.Context, chatID, userID int64, step *session.FlashcardStep) error {
	var lines []string
	for {
		lines = append(lines, renderFlashcardOutcome(step, b.now()))

		if step.Summary != nil {
			xp := 0
			if step.Summary.Reviewed > 0 {
				xp = b.config.Rewards.FlashcardSession
				b.addXP(ctx, userID, xp)
			}
			r := renderFlashcardSummary(step.Summary, xp)
			r.Text = strings.Join(lines, "\n") + "\n\n" + r.Text
			return b.reply(chatID, r)
		}

		next, err := b.ownItem(ctx, userID, step.NextItemID)
		if err == nil {
			r := renderCardFront(next, step.Index, step.Total)
			r.Text = strings.Join(lines, "\n") + "\n\n" + r.Text
			return b.reply(chatID, r)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if step, err = b.deps.Engine.SkipFlashcard(ctx, userID, step.NextItemID); err != nil {
			return err
		}
	}
}

// ownItem loads a word, hiding other users' words
func (b *Bot) ownItem(ctx context.Context, userID, itemID int64) (*models.VocabularyItem, error) {
	item, err := b.deps.Vocab.GetVocabItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, errors.Wrapf(apperrors.ErrNotFound, "vocabulary item %d", itemID)
	}
	return item, nil
}

func (b *Bot) addXP(ctx context.Context, userID int64, xp int) {
	if xp <= 0 {
		return
	}
	if err := b.deps.Profiles.AddXP(ctx, userID, xp); err != nil {
		slog.Error("failed to add xp", "user_id", userID, "xp", xp, "error", err)
	}
}

// awardBadge reports whether the badge is new
func (b *Bot) awardBadge(ctx context.Context, userID int64, badgeID string) bool {
	isNew, err := b.deps.Profiles.AwardBadge(ctx, userID, badgeID, b.now())
	if err != nil {
		slog.Error("failed to award badge", "user_id", userID, "badge", badgeID, "error", err)
		return false
	}
	if isNew {
		slog.Info("badge awarded", "user_id", userID, "badge", badgeID)
	}
	return isNew
}
