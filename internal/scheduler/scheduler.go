package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/spaced_repetition"
)

// Default notification window, in UTC hours
const (
	DefaultNotificationStartHour = 4
	DefaultNotificationEndHour   = 18
)

// DueSource reports how many words are waiting for review
type DueSource interface {
	DueCounts(ctx context.Context, now time.Time) ([]database.DueCount, error)
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(ctx context.Context, userID int64, count int) error
}

// Window is an inclusive range of hours in which reminders may be sent.
// A start after the end wraps around midnight.
type Window struct {
	StartHour int
	EndHour   int
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour <= w.EndHour
	}
	return hour >= w.StartHour || hour <= w.EndHour
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    DueSource
	notifier  Notifier
	window    Window
	now       func() time.Time
}

// New creates a new scheduler instance
func New(source DueSource, notifier Notifier, window Window) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
		window:    window,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks. Jobs stop being useful once ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	// Schedule hourly check for users who need notifications
	_, err := s.scheduler.Every(1).Hour().Do(func() {
		if _, err := s.CheckAndSendReminders(ctx); err != nil {
			slog.Error("reminder run failed", "error", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to schedule reminders")
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// CheckAndSendReminders notifies every user with due words and returns how many were notified
func (s *Scheduler) CheckAndSendReminders(ctx context.Context) (int, error) {
	now := s.now().UTC()
	if !s.window.Contains(now.Hour()) {
		slog.Debug("outside notification hours, skipping reminders",
			"hour", now.Hour(), "start", s.window.StartHour, "end", s.window.EndHour)
		return 0, nil
	}

	counts, err := s.source.DueCounts(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, c := range counts {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if c.Count <= 0 {
			continue
		}
		if err := s.notifier.SendReminders(ctx, c.UserID, capBatch(c.Count)); err != nil {
			slog.Warn("failed to send reminder", "user_id", c.UserID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("reminders sent", "users", sent, "candidates", len(counts))
	return sent, nil
}

// RunManualCheck forces a check for a specific user, ignoring the window
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	n, err := s.source.CountDue(ctx, userID, s.now())
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.notifier.SendReminders(ctx, userID, capBatch(n))
}

// A reminder never promises more words than one review batch holds
func capBatch(n int) int {
	if n > spaced_repetition.DuePageSize {
		return spaced_repetition.DuePageSize
	}
	return n
}
