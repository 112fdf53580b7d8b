// Package bot is the Telegram front end: it decodes updates into engine
// calls and renders the typed results back into messages and keyboards.
package bot

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/example/linguabot/internal/ai"
	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/config"
	"github.com/example/linguabot/internal/content"
	"github.com/example/linguabot/internal/excel"
	"github.com/example/linguabot/internal/quiz"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// TelegramAPI is the part of *tgbotapi.BotAPI the bot uses
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// VocabularyStore is the user's word deck
type VocabularyStore interface {
	Create(ctx context.Context, item *models.VocabularyItem) error
	GetVocabItem(ctx context.Context, id int64) (*models.VocabularyItem, error)
	GetByTerm(ctx context.Context, userID int64, language, term string) (*models.VocabularyItem, error)
	ListByUser(ctx context.Context, userID int64, language string, limit int) ([]models.VocabularyItem, error)
	Delete(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64, now time.Time) (*models.VocabularyStats, error)
}

// ProfileStore holds XP, streaks, levels and badges
type ProfileStore interface {
	Ensure(ctx context.Context, userID int64, username, fullName string, now time.Time) (*models.UserProfile, error)
	Get(ctx context.Context, userID int64) (*models.UserProfile, error)
	Touch(ctx context.Context, userID int64, now time.Time) (int, error)
	AddXP(ctx context.Context, userID int64, delta int) error
	SetLevel(ctx context.Context, userID int64, level string) error
	SetLanguage(ctx context.Context, userID int64, language string) error
	SetNotifications(ctx context.Context, userID int64, enabled bool) error
	RecordAnswers(ctx context.Context, userID int64, correct, total int) error
	AwardBadge(ctx context.Context, userID int64, badgeID string, now time.Time) (bool, error)
	Badges(ctx context.Context, userID int64) ([]models.Badge, error)
	Leaderboard(ctx context.Context, limit int) ([]models.UserProfile, error)
	CountUsers(ctx context.Context) (int, error)
}

// QuizResultStore keeps the history of finished quizzes
type QuizResultStore interface {
	Create(ctx context.Context, result *models.QuizResult) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.QuizResult, error)
}

// LessonStore records finished lessons
type LessonStore interface {
	MarkDone(ctx context.Context, p *models.LessonProgress) (bool, error)
	Completed(ctx context.Context, userID int64, language string) (map[string]bool, error)
	CountDone(ctx context.Context, userID int64) (int, error)
}

// DueLister returns the words a user should review now
type DueLister interface {
	Due(ctx context.Context, userID int64) ([]models.VocabularyItem, error)
}

// ExampleWriter writes an example sentence for a word
type ExampleWriter interface {
	GenerateExample(ctx context.Context, term, meaning, language string) (string, error)
}

// Deps are the services the bot drives. Examples may be nil.
type Deps struct {
	Engine    *session.Engine
	Due       DueLister
	Vocab     VocabularyStore
	Profiles  ProfileStore
	Results   QuizResultStore
	Lessons   LessonStore
	Catalog   *content.Catalog
	Generator *quiz.Generator
	Importer  *excel.Importer
	Tutor     ai.Tutor
	Examples  ExampleWriter
}

// Bot represents the Telegram bot application
type Bot struct {
	api          TelegramAPI
	deps         Deps
	config       *BotConfig
	adminUserIDs map[int64]bool
	limiter      *rate.Limiter
	httpClient   *http.Client
	now          func() time.Time
	wg           sync.WaitGroup
}

// NewTelegramAPI logs in with token
func NewTelegramAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create bot")
	}
	slog.Info("authorized on account", "username", api.Self.UserName)
	return api, nil
}

// New creates a new bot instance
func New(api TelegramAPI, cfg *config.Config, deps Deps) (*Bot, error) {
	if api == nil {
		return nil, errors.New("telegram api is required")
	}
	if deps.Engine == nil || deps.Vocab == nil || deps.Profiles == nil || deps.Results == nil || deps.Lessons == nil ||
		deps.Due == nil || deps.Catalog == nil || deps.Generator == nil || deps.Importer == nil || deps.Tutor == nil {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "bot dependencies are incomplete")
	}

	botConfig := DefaultConfig()
	if cfg.QuizQuestionCount > 0 {
		botConfig.QuizQuestionCount = cfg.QuizQuestionCount
	}
	sendRate := cfg.SendRatePerSecond
	if sendRate <= 0 {
		sendRate = 25
	}

	admins := make(map[int64]bool, len(cfg.AdminUserIDs))
	for id := range cfg.AdminUserIDs {
		admins[id] = true
	}

	return &Bot{
		api:          api,
		deps:         deps,
		config:       botConfig,
		adminUserIDs: admins,
		limiter:      rate.NewLimiter(rate.Limit(sendRate), 1),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}, nil
}

// Start receives updates until ctx is cancelled, handling each in its own goroutine
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	slog.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			slog.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// SendReminders tells the user how many words are waiting. Sends are throttled
// to stay under Telegram's broadcast limits.
func (b *Bot) SendReminders(ctx context.Context, userID int64, count int) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	return b.reply(userID, renderReminder(count))
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling update", "update_id", update.UpdateID, "panic", r)
		}
	}()

	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil {
			return
		}
		b.trackActivity(ctx, msg.From)
		if err := b.handleMessage(ctx, msg); err != nil {
			b.replyError(msg.Chat.ID, msg.From.ID, err)
		}

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return
		}
		b.trackActivity(ctx, cb.From)
		if err := b.HandleCallback(ctx, cb); err != nil {
			b.replyError(cb.Message.Chat.ID, cb.From.ID, err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	switch {
	case msg.IsCommand():
		return b.HandleCommand(ctx, msg)
	case msg.Document != nil:
		return b.handleDocument(ctx, msg)
	default:
		return b.handleText(ctx, msg.Chat.ID, msg.From.ID, msg.Text)
	}
}

// trackActivity creates the profile on first contact and advances the daily streak
func (b *Bot) trackActivity(ctx context.Context, from *tgbotapi.User) {
	now := b.now()
	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if _, err := b.deps.Profiles.Ensure(ctx, from.ID, from.UserName, fullName, now); err != nil {
		slog.Error("failed to ensure profile", "user_id", from.ID, "error", err)
		return
	}
	if _, err := b.deps.Profiles.Touch(ctx, from.ID, now); err != nil {
		slog.Error("failed to update streak", "user_id", from.ID, "error", err)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

func (b *Bot) reply(chatID int64, r reply) error {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if len(r.Buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(r.Buttons)
	}
	return b.sendMessage(msg)
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.reply(chatID, reply{Text: text})
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrapf(err, "failed to send message to chat %d", msg.ChatID)
	}
	return nil
}

// replyError tells the user what went wrong. Only unexpected errors are logged.
func (b *Bot) replyError(chatID, userID int64, err error) {
	if !isExpected(err) {
		slog.Error("failed to handle update", "user_id", userID, "error", err)
	} else {
		slog.Debug("request rejected", "user_id", userID, "error", err)
	}
	if sendErr := b.reply(chatID, reply{Text: userMessage(err), Buttons: backButtons()}); sendErr != nil {
		slog.Warn("failed to send error message", "user_id", userID, "error", sendErr)
	}
}

func isExpected(err error) bool {
	for _, target := range []error{
		apperrors.ErrSessionExpired,
		apperrors.ErrInvalidInput,
		apperrors.ErrInsufficientContent,
		apperrors.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// userMessage maps an error class to what the user sees
func userMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrSessionExpired):
		return "⌛ This activity has already finished or was replaced. Start a new one from the menu."
	case errors.Is(err, apperrors.ErrStaleSession):
		return "⚠️ That option is no longer available."
	case errors.Is(err, apperrors.ErrInsufficientContent):
		return "📭 There is not enough material for that yet. Add more words with /save."
	case errors.Is(err, apperrors.ErrNotFound):
		return "🔍 I could not find that. It may have been deleted."
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "⚠️ That did not look right. See /help for how to use the bot."
	}
	return "❌ Something went wrong. Please try again later."
}
