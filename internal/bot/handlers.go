package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/excel"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

const (
	tutorTimeout   = 30 * time.Second
	exampleTimeout = 15 * time.Second
)

const saveUsage = "✍️ Usage: /save word - meaning - example\n\nExample:\n/save apple - a round fruit - An apple a day keeps the doctor away."

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		return b.handleStart(ctx, chatID, userID)
	case "menu":
		return b.showMainMenu(chatID)
	case "help":
		return b.reply(chatID, reply{Text: helpText, Buttons: backButtons()})
	case "save":
		return b.handleSave(ctx, chatID, userID, args)
	case "deck":
		return b.handleDeck(ctx, chatID, userID)
	case "delete":
		return b.handleDelete(ctx, chatID, userID, args)
	case "review", "flash":
		return b.startReview(ctx, chatID, userID)
	case "quiz":
		return b.startVocabularyQuiz(ctx, chatID, userID)
	case "exam":
		return b.startExam(ctx, chatID, userID)
	case "challenge":
		return b.startChallenge(ctx, chatID, userID)
	case "lesson", "lessons":
		return b.showLessons(ctx, chatID, userID)
	case "roleplay":
		if args != "" {
			return b.startRoleplay(ctx, chatID, userID, strings.ToLower(args))
		}
		return b.reply(chatID, renderScenarioMenu(b.deps.Catalog.Scenarios()))
	case "tutor":
		if args != "" {
			return b.startTutor(ctx, chatID, userID, strings.ToLower(args))
		}
		return b.reply(chatID, renderTutorMenu())
	case "exit":
		return b.handleExit(ctx, chatID, userID)
	case "stats":
		return b.handleStats(ctx, chatID, userID)
	case "top":
		return b.handleTop(ctx, chatID)
	case "notify":
		return b.handleNotify(ctx, chatID, userID, args)
	case "language":
		return b.handleLanguage(ctx, chatID, userID, args)
	case "admin":
		// Admin-only command
		if !b.isAdmin(userID) {
			return b.reply(chatID, reply{Text: "This command is only available for administrators.", Buttons: MainMenuButtons()})
		}
		return b.handleAdminStats(ctx, chatID)
	default:
		return b.reply(chatID, reply{Text: "Unknown command. Use /menu to show the main menu.", Buttons: MainMenuButtons()})
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) error {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	return b.reply(chatID, renderWelcome(p, p.Streak))
}

func (b *Bot) showMainMenu(chatID int64) error {
	return b.reply(chatID, reply{Text: "🤖 Main menu - choose an option:", Buttons: MainMenuButtons()})
}

// handleText routes free text to the live roleplay or tutor session
func (b *Bot) handleText(ctx context.Context, chatID, userID int64, text string) error {
	state, err := b.deps.Engine.Current(ctx, userID)
	if err != nil {
		return err
	}

	switch state.Kind {
	case models.SessionRoleplay:
		return b.replyRoleplay(ctx, chatID, userID, text)
	case models.SessionTutor:
		return b.replyTutor(ctx, chatID, state.Tutor.Mode, text)
	case models.SessionQuiz, models.SessionFlashcard:
		return b.reply(chatID, reply{
			Text:    "👆 Please use the buttons under the card, or /exit to stop.",
			Buttons: exitButtons(),
		})
	}
	return b.reply(chatID, reply{Text: "I don't understand. Use /menu to show the main menu.", Buttons: MainMenuButtons()})
}

// parseSaveArgs splits "word - meaning - example"
func parseSaveArgs(args string) (term, meaning, example string, ok bool) {
	args = strings.ReplaceAll(args, " — ", " - ")
	parts := strings.SplitN(args, " - ", 3)
	if len(parts) < 2 {
		return "", "", "", false
	}
	term = strings.TrimSpace(parts[0])
	meaning = strings.TrimSpace(parts[1])
	if len(parts) == 3 {
		example = strings.TrimSpace(parts[2])
	}
	if term == "" || meaning == "" {
		return "", "", "", false
	}
	return term, meaning, example, true
}

func (b *Bot) handleSave(ctx context.Context, chatID, userID int64, args string) error {
	term, meaning, example, ok := parseSaveArgs(args)
	if !ok {
		return b.sendText(chatID, saveUsage)
	}

	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}

	_, err = b.deps.Vocab.GetByTerm(ctx, userID, p.Language, term)
	switch {
	case err == nil:
		return b.sendText(chatID, fmt.Sprintf("ℹ️ %s is already in your deck!", term))
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	if example == "" && b.deps.Examples != nil {
		exCtx, cancel := context.WithTimeout(ctx, exampleTimeout)
		generated, err := b.deps.Examples.GenerateExample(exCtx, term, meaning, p.Language)
		cancel()
		if err != nil {
			slog.Warn("failed to generate example", "user_id", userID, "term", term, "error", err)
		} else {
			example = generated
		}
	}

	item := models.NewVocabularyItem(userID, term, meaning, example, p.Language, b.now())
	if err := b.deps.Vocab.Create(ctx, &item); err != nil {
		return err
	}
	b.addXP(ctx, userID, b.config.Rewards.WordSaved)

	stats, err := b.deps.Vocab.Stats(ctx, userID, b.now())
	if err != nil {
		return err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "✅ Saved!\n\n%s → %s", item.Term, item.Meaning)
	if item.Example != "" {
		fmt.Fprintf(&text, "\n💬 %s", item.Example)
	}
	fmt.Fprintf(&text, "\n\nTotal words: %d", stats.Total)

	if stats.Total >= b.config.WordHoarderThreshold {
		if b.awardBadge(ctx, userID, models.BadgeWordHoarder) {
			fmt.Fprintf(&text, "\n\n🏅 New badge: %s! You've saved %d words!", badgeName(models.BadgeWordHoarder), stats.Total)
		}
	}
	return b.sendText(chatID, text.String())
}

func (b *Bot) handleDeck(ctx context.Context, chatID, userID int64) error {
	items, err := b.deps.Vocab.ListByUser(ctx, userID, "", b.config.DeckPageSize)
	if err != nil {
		return err
	}
	stats, err := b.deps.Vocab.Stats(ctx, userID, b.now())
	if err != nil {
		return err
	}
	return b.reply(chatID, reply{Text: renderDeck(items, stats.Total, b.now()), Buttons: backButtons()})
}

func (b *Bot) handleDelete(ctx context.Context, chatID, userID int64, args string) error {
	id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
	if err != nil || id <= 0 {
		return b.sendText(chatID, "Usage: /delete <id>\nSee the ids with /deck")
	}
	if err := b.deps.Vocab.Delete(ctx, userID, id); err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Word #%d removed.", id))
}

func (b *Bot) startReview(ctx context.Context, chatID, userID int64) error {
	due, err := b.deps.Due.Due(ctx, userID)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return b.reply(chatID, reply{
			Text:    "🎉 Nothing to review right now. Come back later or add words with /save.",
			Buttons: MainMenuButtons(),
		})
	}

	ids := make([]int64, 0, len(due))
	for _, it := range due {
		ids = append(ids, it.ID)
	}
	step, err := b.deps.Engine.StartFlashcards(ctx, userID, ids)
	if err != nil {
		return err
	}
	// Due already loaded the first card
	return b.reply(chatID, renderCardFront(&due[0], step.Index, step.Total))
}

func (b *Bot) startVocabularyQuiz(ctx context.Context, chatID, userID int64) error {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	items, err := b.deps.Vocab.ListByUser(ctx, userID, p.Language, 0)
	if err != nil {
		return err
	}
	questions, err := b.deps.Generator.FromVocabulary(items, b.config.QuizQuestionCount)
	if errors.Is(err, apperrors.ErrInsufficientContent) {
		return b.sendText(chatID, fmt.Sprintf(
			"📭 A quiz needs at least %d words with different meanings. You have %d. Add more with /save.",
			models.OptionsPerQuestion, len(items)))
	}
	if err != nil {
		return err
	}
	return b.startQuiz(ctx, chatID, userID, questions, models.QuizModeQuiz, "", "📝 Vocabulary quiz")
}

func (b *Bot) startExam(ctx context.Context, chatID, userID int64) error {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	questions, err := b.deps.Catalog.LevelTest(p.Language)
	if err != nil {
		return err
	}
	intro := fmt.Sprintf("🎓 Level test: %d questions. Your result sets your CEFR level.", len(questions))
	return b.startQuiz(ctx, chatID, userID, questions, models.QuizModeExam, "", intro)
}

func (b *Bot) startChallenge(ctx context.Context, chatID, userID int64) error {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	questions, err := b.deps.Generator.Shuffle(b.deps.Catalog.ChallengePool(p.Language), b.config.ChallengeSize)
	if err != nil {
		return err
	}
	return b.startQuiz(ctx, chatID, userID, questions, models.QuizModeChallenge, "", "🏆 Challenge! Answer as many as you can.")
}

func (b *Bot) showLessons(ctx context.Context, chatID, userID int64) error {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	done, err := b.deps.Lessons.Completed(ctx, userID, p.Language)
	if err != nil {
		return err
	}
	return b.reply(chatID, renderLessonMenu(p.Level, b.deps.Catalog.Lessons(p.Language, p.Level), done))
}

func (b *Bot) startLesson(ctx context.Context, chatID, userID int64, level, key string) error {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	lesson, err := b.deps.Catalog.Lesson(p.Language, level, key)
	if err != nil {
		return err
	}
	intro := fmt.Sprintf("📚 %s\n\n%s", lesson.Title, lesson.Body)
	return b.startQuiz(ctx, chatID, userID, lesson.Quiz, models.QuizModeLesson, lesson.Key, intro)
}

func (b *Bot) startQuiz(ctx context.Context, chatID, userID int64, questions []models.Question, mode models.QuizMode, lessonKey, intro string) error {
	step, err := b.deps.Engine.StartQuiz(ctx, userID, questions, mode, lessonKey)
	if err != nil {
		return err
	}
	r := renderQuestion(step.SessionID, step.Index, step.Total, step.Question)
	if intro != "" {
		r.Text = intro + "\n\n" + r.Text
	}
	return b.reply(chatID, r)
}

func (b *Bot) startRoleplay(ctx context.Context, chatID, userID int64, key string) error {
	step, err := b.deps.Engine.StartRoleplay(ctx, userID, key)
	if err != nil {
		return err
	}
	return b.reply(chatID, renderRoleplayStart(step))
}

func (b *Bot) replyRoleplay(ctx context.Context, chatID, userID int64, text string) error {
	step, err := b.deps.Engine.ReplyRoleplay(ctx, userID, text)
	if err != nil {
		return err
	}
	xp := 0
	if step.Summary != nil {
		xp = b.config.Rewards.RoleplayComplete
		b.addXP(ctx, userID, xp)
	}
	return b.reply(chatID, renderRoleplayStep(step, xp))
}

func (b *Bot) startTutor(ctx context.Context, chatID, userID int64, mode string) error {
	if err := b.deps.Engine.StartTutor(ctx, userID, mode); err != nil {
		return err
	}
	text := "💬 Tutor chat started. Write anything in English and I will answer. Send /exit to stop."
	if mode == session.TutorGrammar {
		text = "✏️ Send me a sentence and I will check its grammar. Send /exit to stop."
	}
	return b.reply(chatID, reply{Text: text, Buttons: exitButtons()})
}

func (b *Bot) replyTutor(ctx context.Context, chatID int64, mode, text string) error {
	if strings.TrimSpace(text) == "" {
		return b.sendText(chatID, "Send me some text to work with.")
	}
	tCtx, cancel := context.WithTimeout(ctx, tutorTimeout)
	defer cancel()

	answer, err := b.deps.Tutor.Reply(tCtx, mode, text)
	if err != nil {
		return err
	}
	return b.reply(chatID, reply{Text: "🤖 " + answer, Buttons: exitButtons()})
}

func (b *Bot) handleExit(ctx context.Context, chatID, userID int64) error {
	kind, err := b.deps.Engine.Exit(ctx, userID)
	if err != nil {
		return err
	}
	if kind == models.SessionIdle {
		return b.reply(chatID, reply{Text: "Nothing to exit. Use the menu to start something new.", Buttons: MainMenuButtons()})
	}
	return b.reply(chatID, reply{Text: fmt.Sprintf("🚪 Left the %s.", kind), Buttons: MainMenuButtons()})
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) error {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	vs, err := b.deps.Vocab.Stats(ctx, userID, b.now())
	if err != nil {
		return err
	}
	badges, err := b.deps.Profiles.Badges(ctx, userID)
	if err != nil {
		return err
	}
	recent, err := b.deps.Results.ListByUser(ctx, userID, 5)
	if err != nil {
		return err
	}
	lessons, err := b.deps.Lessons.CountDone(ctx, userID)
	if err != nil {
		return err
	}
	return b.reply(chatID, reply{Text: renderStats(p, vs, badges, recent, lessons), Buttons: backButtons()})
}

func (b *Bot) handleTop(ctx context.Context, chatID int64) error {
	users, err := b.deps.Profiles.Leaderboard(ctx, 10)
	if err != nil {
		return err
	}
	return b.reply(chatID, reply{Text: renderLeaderboard(users), Buttons: backButtons()})
}

func (b *Bot) handleNotify(ctx context.Context, chatID, userID int64, args string) error {
	var enabled bool
	switch strings.ToLower(args) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		p, err := b.deps.Profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		state := "off"
		if p.NotificationsEnabled {
			state = "on"
		}
		return b.sendText(chatID, fmt.Sprintf("🔔 Review reminders are %s.\nUse /notify on or /notify off.", state))
	}

	if err := b.deps.Profiles.SetNotifications(ctx, userID, enabled); err != nil {
		return err
	}
	if enabled {
		return b.sendText(chatID, "🔔 Reminders enabled. I will tell you when words are due.")
	}
	return b.sendText(chatID, "🔕 Reminders disabled.")
}

func (b *Bot) handleLanguage(ctx context.Context, chatID, userID int64, args string) error {
	lang := strings.ToLower(strings.TrimSpace(args))
	if lang == "" {
		p, err := b.deps.Profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		return b.sendText(chatID, fmt.Sprintf("🌍 You are learning %s.\nChange it with /language <name>.", titleCase(p.Language)))
	}
	if _, err := b.deps.Catalog.LevelTest(lang); err != nil {
		if errors.Is(err, apperrors.ErrInsufficientContent) {
			return b.sendText(chatID, fmt.Sprintf("🌍 There is no material for %s yet.", lang))
		}
		return err
	}
	if err := b.deps.Profiles.SetLanguage(ctx, userID, lang); err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🌍 Now learning %s. Take the level test with /exam.", titleCase(lang)))
}

func (b *Bot) handleAdminStats(ctx context.Context, chatID int64) error {
	count, err := b.deps.Profiles.CountUsers(ctx)
	if err != nil {
		return err
	}
	top, err := b.deps.Profiles.Leaderboard(ctx, 5)
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🛠 Admin\n\nUsers: %d\n\n%s", count, renderLeaderboard(top)))
}

// handleDocument imports an uploaded .xlsx or .csv word list into the sender's deck
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) error {
	chatID, userID := msg.Chat.ID, msg.From.ID
	doc := msg.Document

	format, err := excel.FormatFromName(doc.FileName)
	if err != nil {
		return b.sendText(chatID, "📄 Please send an .xlsx or .csv file with columns: word, meaning, example.")
	}
	if int64(doc.FileSize) > b.config.MaxImportBytes {
		return b.sendText(chatID, fmt.Sprintf("📄 The file is too large. The limit is %d KB.", b.config.MaxImportBytes>>10))
	}

	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return err
	}

	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return errors.Wrap(err, "failed to get file url")
	}
	data, err := b.download(ctx, url)
	if err != nil {
		return err
	}

	cfg := excel.DefaultImportConfig(userID)
	cfg.Language = p.Language
	result, err := b.deps.Importer.Import(ctx, bytes.NewReader(data), format, cfg)
	if err != nil {
		return err
	}
	slog.Info("words imported", "user_id", userID, "file", doc.FileName,
		"created", result.Created, "updated", result.Updated, "errors", len(result.Errors))

	var text strings.Builder
	fmt.Fprintf(&text, "📥 Import finished\n\nProcessed: %d\nCreated: %d\nUpdated: %d\nSkipped: %d",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		fmt.Fprintf(&text, "\n\nErrors: %d", len(result.Errors))
		for i, e := range result.Errors {
			if i == 5 {
				text.WriteString("\n...")
				break
			}
			text.WriteString("\n• " + e)
		}
	}
	return b.reply(chatID, reply{Text: text.String(), Buttons: MainMenuButtons()})
}

func (b *Bot) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build download request")
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, b.config.MaxImportBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	if int64(len(data)) > b.config.MaxImportBytes {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "file exceeds the import limit")
	}
	return data, nil
}
