package bot

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/placement"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

func TestRenderQuestion(t *testing.T) {
	q := &models.Question{Prompt: "apple", Options: []string{"fruit", "car", "dog", "sky"}, CorrectIndex: 0}
	r := renderQuestion("sid", 1, 5, q)

	assert.Equal(t, "❓ Question 2/5\n\napple", r.Text)
	require.Len(t, r.Buttons, 5)
	assert.Equal(t, "car", r.Buttons[1][0].Text)
	assert.Equal(t, "qa:sid:1:1", r.Buttons[1][0].CallbackData)
	assert.Equal(t, menuData(actionExit), r.Buttons[4][0].CallbackData)
}

func TestRenderQuizStep(t *testing.T) {
	next := &models.Question{Prompt: "dog", Options: []string{"a", "b", "c", "d"}}
	r := renderQuizStep(&session.QuizStep{
		SessionID: "sid", Index: 1, Total: 2, Question: next,
		Answered: true, Correct: false, CorrectText: "fruit",
	}, 10, nil)
	assert.Contains(t, r.Text, "The answer is: fruit")
	assert.Contains(t, r.Text, "Question 2/2")
	assert.Equal(t, "qa:sid:1:0", r.Buttons[0][0].CallbackData)

	tier := placement.Tier3
	r = renderQuizStep(&session.QuizStep{
		Answered: true, Correct: true,
		Summary: &session.QuizSummary{Score: 4, Total: 8, Mode: models.QuizModeExam, Tier: &tier},
	}, 10, []string{"🏅 extra"})
	assert.Contains(t, r.Text, "✅ Correct! +10 XP")
	assert.Contains(t, r.Text, "Score: 4/8 (50%) 📚 Keep practising!")
	assert.Contains(t, r.Text, "Your level: B1")
	assert.Contains(t, r.Text, "🏅 extra")
	assert.Equal(t, MainMenuButtons(), r.Buttons)
}

func TestRenderCardBack(t *testing.T) {
	item := &models.VocabularyItem{ID: 3, Term: "apple", Meaning: "a fruit", Example: "I ate an apple."}
	r := renderCardBack(item)
	assert.Contains(t, r.Text, "a fruit")
	assert.Contains(t, r.Text, "I ate an apple.")
	assert.Equal(t, "fc:3:1", r.Buttons[0][0].CallbackData)
	assert.Equal(t, "fc:3:5", r.Buttons[1][1].CallbackData)
}

func TestDueIn(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "due now", dueIn(now, now))
	assert.Equal(t, "due now", dueIn(now.Add(-time.Hour), now))
	assert.Equal(t, "due today", dueIn(now.Add(3*time.Hour), now))
	assert.Equal(t, "due tomorrow", dueIn(now.AddDate(0, 0, 1), now))
	assert.Equal(t, "due in 6 days", dueIn(now.AddDate(0, 0, 6), now))
}

func TestRenderLeaderboard(t *testing.T) {
	assert.Contains(t, renderLeaderboard(nil), "Nobody")

	text := renderLeaderboard([]models.UserProfile{
		{UserID: 1, FullName: "Ann", XP: 120, Streak: 3},
		{UserID: 2, Username: "bob", XP: 80},
		{UserID: 3, XP: 40},
		{UserID: 4, FullName: "Dee", XP: 10},
	})
	assert.Contains(t, text, "🥇 Ann - ⭐ 120 XP 🔥 3d")
	assert.Contains(t, text, "🥈 bob")
	assert.Contains(t, text, "🥉 user 3")
	assert.Contains(t, text, "4. Dee")
}

func TestRenderStats(t *testing.T) {
	p := &models.UserProfile{Level: "B1", Language: "english", XP: 300, Streak: 4, TotalCorrect: 3, TotalQuestions: 4}
	vs := &models.VocabularyStats{Total: 10, Due: 2, Mastered: 1, AvgEase: 2.55}
	text := renderStats(p, vs, []models.Badge{{BadgeID: models.BadgeQuizAce}}, []models.QuizResult{
		{Mode: models.QuizModeExam, Score: 6, Total: 8, CompletedAt: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
	}, 2)
	assert.Contains(t, text, "Level: B1 (English)")
	assert.Contains(t, text, "Lessons done: 2")
	assert.Contains(t, text, "Accuracy: 75% (3/4)")
	assert.Contains(t, text, "Average ease: 2.55")
	assert.Contains(t, text, "Badges: Quiz Ace")
	assert.Contains(t, text, "exam 6/8 (2025-03-09)")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.Wrap(apperrors.ErrSessionExpired, "quiz"), "⌛"},
		{errors.Wrap(apperrors.ErrStaleSession, "option 7"), "no longer available"},
		{errors.Wrap(apperrors.ErrInvalidInput, "bad"), "did not look right"},
		{apperrors.ErrInsufficientContent, "not enough material"},
		{apperrors.ErrNotFound, "could not find"},
		{errors.New("disk full"), "Something went wrong"},
	}
	for _, tt := range tests {
		assert.Contains(t, userMessage(tt.err), tt.want, "%v", tt.err)
	}

	assert.True(t, isExpected(apperrors.ErrStaleSession))
	assert.False(t, isExpected(errors.New("disk full")))
}

func TestParseSaveArgs(t *testing.T) {
	term, meaning, example, ok := parseSaveArgs("apple - a round fruit - An apple a day.")
	require.True(t, ok)
	assert.Equal(t, "apple", term)
	assert.Equal(t, "a round fruit", meaning)
	assert.Equal(t, "An apple a day.", example)

	term, meaning, example, ok = parseSaveArgs("well-being — happiness")
	require.True(t, ok)
	assert.Equal(t, "well-being", term)
	assert.Equal(t, "happiness", meaning)
	assert.Empty(t, example)

	for _, bad := range []string{"", "apple", "apple -", " - fruit"} {
		_, _, _, ok := parseSaveArgs(bad)
		assert.False(t, ok, bad)
	}
}
