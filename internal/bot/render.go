package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/linguabot/internal/content"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/internal/spaced_repetition"
	"github.com/example/linguabot/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// reply is a rendered message: text plus optional buttons
type reply struct {
	Text    string
	Buttons [][]MenuButton
}

// MainMenuButtons returns the buttons for the main menu
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🔄 Review", CallbackData: menuData(actionReview)},
			{Text: "📝 Quiz", CallbackData: menuData(actionQuiz)},
		},
		{
			{Text: "📚 Lessons", CallbackData: menuData(actionLessons)},
			{Text: "🏆 Challenge", CallbackData: menuData(actionChallenge)},
		},
		{
			{Text: "🎭 Roleplay", CallbackData: menuData(actionRoleplay)},
			{Text: "🤖 Tutor", CallbackData: menuData(actionTutor)},
		},
		{
			{Text: "🎓 Level test", CallbackData: menuData(actionExam)},
			{Text: "📊 Statistics", CallbackData: menuData(actionStats)},
		},
		{
			{Text: "🗂 My words", CallbackData: menuData(actionDeck)},
			{Text: "❓ Help", CallbackData: menuData(actionHelp)},
		},
	}
}

func backButtons() [][]MenuButton {
	return [][]MenuButton{{{Text: "⬅️ Main menu", CallbackData: menuData(actionMenu)}}}
}

func exitButtons() [][]MenuButton {
	return [][]MenuButton{{{Text: "🚪 Exit", CallbackData: menuData(actionExit)}}}
}

const helpText = `📖 How to use the bot

🔸 Words
/save word - meaning - example  Save a word (example optional)
/deck  Show your saved words
/delete <id>  Remove a word
Send an .xlsx or .csv file to import many words at once

🔸 Practice
/review  Flashcards for the words that are due
/quiz  Multiple-choice quiz over your words
/lesson  Short lessons for your level
/challenge  Ten mixed questions
/roleplay  Practise a conversation
/tutor  Chat with the tutor or get grammar feedback
/exam  Level test, sets your CEFR level
/exit  Leave the current activity

🔸 Progress
/stats  Your statistics and badges
/top  Leaderboard
/notify on|off  Review reminders
/language <name>  Language you are learning`

func renderWelcome(p *models.UserProfile, streak int) reply {
	name := p.FullName
	if name == "" {
		name = p.Username
	}
	text := fmt.Sprintf("👋 Welcome, %s!\n\n"+
		"I help you learn %s with spaced repetition, quizzes, lessons and roleplays.\n\n"+
		"🎓 Level: %s\n⭐ XP: %d\n🔥 Streak: %d day(s)\n\n"+
		"Save your first word with /save, or take the level test.",
		name, titleCase(p.Language), p.Level, p.XP, streak)
	return reply{Text: text, Buttons: MainMenuButtons()}
}

func renderQuestion(sessionID string, index, total int, q *models.Question) reply {
	var buttons [][]MenuButton
	for i, opt := range q.Options {
		buttons = append(buttons, []MenuButton{{Text: opt, CallbackData: quizAnswerData(sessionID, index, i)}})
	}
	buttons = append(buttons, exitButtons()...)
	return reply{
		Text:    fmt.Sprintf("❓ Question %d/%d\n\n%s", index+1, total, q.Prompt),
		Buttons: buttons,
	}
}

// renderQuizStep renders the feedback for the answer plus the next question, if any.
// extra lines (XP, badges, level) are appended to the summary.
func renderQuizStep(step *session.QuizStep, correctXP int, extra []string) reply {
	var b strings.Builder
	if step.Answered {
		if step.Correct {
			fmt.Fprintf(&b, "✅ Correct! +%d XP\n", correctXP)
		} else {
			fmt.Fprintf(&b, "❌ Not quite. The answer is: %s\n", step.CorrectText)
		}
	}

	if step.Summary != nil {
		b.WriteString("\n")
		b.WriteString(renderQuizSummary(step.Summary, extra))
		return reply{Text: b.String(), Buttons: MainMenuButtons()}
	}

	next := renderQuestion(step.SessionID, step.Index, step.Total, step.Question)
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(next.Text)
	return reply{Text: b.String(), Buttons: next.Buttons}
}

func renderQuizSummary(s *session.QuizSummary, extra []string) string {
	percent := 0
	if s.Total > 0 {
		percent = s.Score * 100 / s.Total
	}
	rating := "📚 Keep practising!"
	switch {
	case percent >= 80:
		rating = "🌟 Excellent!"
	case percent >= 60:
		rating = "👍 Good job!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Quiz complete!\n\nScore: %d/%d (%d%%) %s", s.Score, s.Total, percent, rating)
	if s.Tier != nil {
		fmt.Fprintf(&b, "\n\n🎓 Your level: %s", s.Tier.String())
	}
	for _, line := range extra {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// renderCardFront shows the word and asks the learner to recall it
func renderCardFront(item *models.VocabularyItem, index, total int) reply {
	return reply{
		Text: fmt.Sprintf("🃏 Card %d/%d\n\n%s\n\nTry to recall the meaning, then reveal it.", index+1, total, item.Term),
		Buttons: [][]MenuButton{
			{{Text: "👀 Show answer", CallbackData: flashcardShowData(item.ID)}},
			exitButtons()[0],
		},
	}
}

// renderCardBack reveals the meaning and offers the recall grades
func renderCardBack(item *models.VocabularyItem) reply {
	var b strings.Builder
	fmt.Fprintf(&b, "🃏 %s\n\n📖 %s", item.Term, item.Meaning)
	if item.Example != "" {
		fmt.Fprintf(&b, "\n💬 %s", item.Example)
	}
	b.WriteString("\n\nHow well did you remember it?")

	grade := func(text string, q spaced_repetition.QualityResponse) MenuButton {
		return MenuButton{Text: text, CallbackData: flashcardRateData(item.ID, q)}
	}
	return reply{
		Text: b.String(),
		Buttons: [][]MenuButton{
			{grade("❌ Forgot", spaced_repetition.QualityIncorrect), grade("😓 Hard", spaced_repetition.QualityCorrectDifficult)},
			{grade("🙂 Good", spaced_repetition.QualityCorrectHesitation), grade("😎 Easy", spaced_repetition.QualityPerfect)},
		},
	}
}

func renderReviewed(item *models.VocabularyItem, now time.Time) string {
	return fmt.Sprintf("📅 %s: next review %s", item.Term, dueIn(item.NextDue, now))
}

// renderFlashcardOutcome is the one-line result of a rated or skipped card
func renderFlashcardOutcome(step *session.FlashcardStep, now time.Time) string {
	if step.Skipped || step.Reviewed == nil {
		return "⚠️ A deleted word was skipped."
	}
	return renderReviewed(step.Reviewed, now)
}

func renderFlashcardSummary(s *session.FlashcardSummary, xp int) reply {
	text := fmt.Sprintf("🎉 Review complete!\n\nReviewed %d word(s).", s.Reviewed)
	if xp > 0 {
		text += fmt.Sprintf(" +%d XP 🌟", xp)
	}
	if s.Skipped > 0 {
		text += fmt.Sprintf("\nSkipped %d deleted word(s).", s.Skipped)
	}
	return reply{Text: text, Buttons: MainMenuButtons()}
}

func renderRoleplayStart(step *session.RoleplayStep) reply {
	var b strings.Builder
	fmt.Fprintf(&b, "🎭 %s\n\n%s\n", step.Title, step.Context)
	if len(step.Vocab) > 0 {
		fmt.Fprintf(&b, "\n🔑 Useful words: %s\n", strings.Join(step.Vocab, ", "))
	}
	fmt.Fprintf(&b, "\n(%d/%d) %s\n\nType your reply.", step.Step+1, step.Total, step.Prompt)
	return reply{Text: b.String(), Buttons: exitButtons()}
}

func renderRoleplayStep(step *session.RoleplayStep, xp int) reply {
	if step.Summary != nil {
		return reply{
			Text: fmt.Sprintf("🎉 Roleplay complete! You made %d replies. +%d XP\n\n"+
				"Try another scenario or practise with the tutor.", step.Summary.Turns, xp),
			Buttons: MainMenuButtons(),
		}
	}
	return reply{
		Text:    fmt.Sprintf("(%d/%d) %s", step.Step+1, step.Total, step.Prompt),
		Buttons: exitButtons(),
	}
}

func renderScenarioMenu(scenarios []content.Scenario) reply {
	var buttons [][]MenuButton
	for _, s := range scenarios {
		buttons = append(buttons, []MenuButton{{Text: s.Title, CallbackData: roleplayData(s.Key)}})
	}
	buttons = append(buttons, backButtons()...)
	return reply{Text: "🎭 Choose a scenario:", Buttons: buttons}
}

// renderLessonMenu lists the lessons of a level, marking the finished ones.
// Finished lessons stay pressable so they can be repeated.
func renderLessonMenu(level string, lessons []content.Lesson, done map[string]bool) reply {
	if len(lessons) == 0 {
		return reply{
			Text:    fmt.Sprintf("📚 No lessons for level %s yet. Try /challenge or the level test.", level),
			Buttons: backButtons(),
		}
	}

	finished := 0
	var buttons [][]MenuButton
	for _, l := range lessons {
		mark := "🔲"
		if done[l.Key] {
			mark = "✅"
			finished++
		}
		buttons = append(buttons, []MenuButton{{Text: mark + " " + l.Title, CallbackData: lessonData(l.Level, l.Key)}})
	}
	buttons = append(buttons, backButtons()...)

	text := fmt.Sprintf("📚 Lessons for level %s (%d/%d done):", level, finished, len(lessons))
	if finished == len(lessons) {
		text = fmt.Sprintf("🎉 You've completed all lessons for level %s!\nRepeat any of them, or take the level test to move up.", level)
	}
	return reply{Text: text, Buttons: buttons}
}

func renderTutorMenu() reply {
	return reply{
		Text: "🤖 Tutor\n\nChat: talk about anything and I will answer.\nGrammar: send a sentence and I will check it.",
		Buttons: [][]MenuButton{
			{
				{Text: "💬 Chat", CallbackData: tutorData(session.TutorChat)},
				{Text: "✏️ Grammar", CallbackData: tutorData(session.TutorGrammar)},
			},
			backButtons()[0],
		},
	}
}

func renderDeck(items []models.VocabularyItem, total int, now time.Time) string {
	if len(items) == 0 {
		return "🗂 Your deck is empty. Add words with /save word - meaning"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🗂 Your words (%d of %d):\n", len(items), total)
	for _, it := range items {
		fmt.Fprintf(&b, "\n#%d %s - %s (%s)", it.ID, it.Term, it.Meaning, dueIn(it.NextDue, now))
	}
	b.WriteString("\n\nRemove a word with /delete <id>")
	return b.String()
}

func renderStats(p *models.UserProfile, vs *models.VocabularyStats, badges []models.Badge, recent []models.QuizResult, lessons int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Your statistics\n\n"+
		"🎓 Level: %s (%s)\n⭐ XP: %d\n🔥 Streak: %d day(s)\n",
		p.Level, titleCase(p.Language), p.XP, p.Streak)

	accuracy := 0
	if p.TotalQuestions > 0 {
		accuracy = p.TotalCorrect * 100 / p.TotalQuestions
	}
	fmt.Fprintf(&b, "🎯 Accuracy: %d%% (%d/%d)\n", accuracy, p.TotalCorrect, p.TotalQuestions)
	fmt.Fprintf(&b, "📚 Lessons done: %d\n", lessons)

	fmt.Fprintf(&b, "\n🗂 Words: %d\n🔄 Due now: %d\n🏅 Mastered: %d\n", vs.Total, vs.Due, vs.Mastered)
	if vs.Total > 0 {
		fmt.Fprintf(&b, "📈 Average ease: %.2f\n", vs.AvgEase)
	}

	if len(badges) > 0 {
		names := make([]string, 0, len(badges))
		for _, bd := range badges {
			names = append(names, badgeName(bd.BadgeID))
		}
		fmt.Fprintf(&b, "\n🏅 Badges: %s\n", strings.Join(names, ", "))
	}

	if len(recent) > 0 {
		b.WriteString("\n📝 Recent quizzes:\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "• %s %d/%d (%s)\n", r.Mode, r.Score, r.Total, r.CompletedAt.Format("2006-01-02"))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLeaderboard(users []models.UserProfile) string {
	if len(users) == 0 {
		return "🏆 Nobody on the leaderboard yet."
	}
	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	b.WriteString("🏆 Leaderboard\n")
	for i, u := range users {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i]
		}
		name := u.FullName
		if name == "" {
			name = u.Username
		}
		if name == "" {
			name = fmt.Sprintf("user %d", u.UserID)
		}
		fmt.Fprintf(&b, "\n%s %s - ⭐ %d XP 🔥 %dd", place, name, u.XP, u.Streak)
	}
	return b.String()
}

func renderReminder(count int) reply {
	return reply{
		Text: fmt.Sprintf("⏰ You have %d word(s) to review. A few minutes now keeps them fresh!", count),
		Buttons: [][]MenuButton{
			{{Text: "🔄 Start review", CallbackData: menuData(actionReview)}},
		},
	}
}

func badgeName(id string) string {
	switch id {
	case models.BadgeQuizAce:
		return "Quiz Ace"
	case models.BadgeFirstLesson:
		return "First Lesson"
	case models.BadgeWordHoarder:
		return "Word Hoarder"
	}
	return id
}

// dueIn describes when a word comes up next
func dueIn(next, now time.Time) string {
	d := next.Sub(now)
	if d <= 0 {
		return "due now"
	}
	days := int(d.Hours() / 24)
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	}
	return fmt.Sprintf("due in %d days", days)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
