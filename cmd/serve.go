package cmd

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/linguabot/internal/ai"
	"github.com/example/linguabot/internal/bot"
	"github.com/example/linguabot/internal/config"
	"github.com/example/linguabot/internal/content"
	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/excel"
	"github.com/example/linguabot/internal/quiz"
	"github.com/example/linguabot/internal/scheduler"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/internal/spaced_repetition"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := cfg.RequireToken(); err != nil {
		return err
	}
	api, err := bot.NewTelegramAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}

	vocab := database.NewVocabularyRepository()
	deps, err := buildDeps(cfg, vocab)
	if err != nil {
		return err
	}

	b, err := bot.New(api, cfg, deps)
	if err != nil {
		return errors.Wrap(err, "failed to create bot")
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.EnableScheduler {
		sched := scheduler.New(vocab, b, scheduler.Window{
			StartHour: cfg.NotificationStartHour,
			EndHour:   cfg.NotificationEndHour,
		})
		if err := sched.Start(ctx); err != nil {
			return err
		}
		slog.Info("reminder scheduler started",
			"start_hour", cfg.NotificationStartHour, "end_hour", cfg.NotificationEndHour)
		g.Go(func() error {
			<-ctx.Done()
			sched.Stop()
			slog.Info("reminder scheduler stopped")
			return nil
		})
	}

	g.Go(func() error {
		return b.Start(ctx)
	})

	slog.Info("bot is running, press Ctrl+C to stop")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

func buildDeps(cfg *config.Config, vocab *database.VocabularyRepository) (bot.Deps, error) {
	catalog := content.NewCatalog()
	reviewer := spaced_repetition.NewScheduler(vocab)

	tutor := &ai.FallbackTutor{
		Fallback: ai.NewRuleTutor(rand.NewSource(time.Now().UnixNano())),
		OnError: func(err error) {
			slog.Warn("openai tutor failed, using built-in replies", "error", err)
		},
	}
	deps := bot.Deps{
		Engine:    session.NewEngine(database.NewSessionRepository(), reviewer, catalog),
		Due:       reviewer,
		Vocab:     vocab,
		Profiles:  database.NewProfileRepository(),
		Results:   database.NewQuizResultRepository(),
		Lessons:   database.NewLessonRepository(),
		Catalog:   catalog,
		Generator: quiz.NewGenerator(),
		Importer:  excel.NewImporter(vocab),
		Tutor:     tutor,
	}

	if cfg.AIEnabled() {
		client, err := ai.NewClient(ai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return bot.Deps{}, err
		}
		tutor.Primary = client
		deps.Examples = client
		slog.Info("openai enabled", "model", cfg.OpenAIModel)
	}
	return deps, nil
}
