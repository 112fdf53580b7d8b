package session

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/spaced_repetition"
	"github.com/example/linguabot/pkg/models"
)

// FlashcardRating is a self-assessed recall grade for the shown card
type FlashcardRating struct {
	ItemID  int64
	Quality spaced_repetition.QualityResponse
}

// FlashcardStep is what the caller presents after a deck transition.
// NextItemID is zero once the deck is exhausted. Reviewed is nil when the
// card was skipped because it no longer exists.
type FlashcardStep struct {
	Reviewed   *models.VocabularyItem
	Skipped    bool
	NextItemID int64
	Index      int
	Total      int
	Summary    *FlashcardSummary
}

// FlashcardSummary closes a finished deck
type FlashcardSummary struct {
	Reviewed int
	Skipped  int
}

// StartFlashcards opens a deck over the given item ids in order.
func (e *Engine) StartFlashcards(ctx context.Context, userID int64, itemIDs []int64) (*FlashcardStep, error) {
	if len(itemIDs) == 0 {
		return nil, errors.Wrap(apperrors.ErrInsufficientContent, "no cards to review")
	}

	fs := &models.FlashcardSession{ItemIDs: append([]int64(nil), itemIDs...)}
	state := models.SessionState{UserID: userID, Kind: models.SessionFlashcard, Flashcard: fs}
	if err := e.start(ctx, state); err != nil {
		return nil, err
	}

	return &FlashcardStep{NextItemID: fs.ItemIDs[0], Total: len(fs.ItemIDs)}, nil
}

// RateFlashcard reschedules the current card and moves to the next one.
// A rating for any card other than the current one is rejected and
// leaves the deck where it was. A current card that was deleted meanwhile
// is skipped.
func (e *Engine) RateFlashcard(ctx context.Context, userID int64, r FlashcardRating) (*FlashcardStep, error) {
	if err := spaced_repetition.ValidateQuality(r.Quality); err != nil {
		return nil, err
	}
	return e.advanceFlashcard(ctx, userID, r.ItemID, func() (*models.VocabularyItem, error) {
		return e.reviewer.Review(ctx, r.ItemID, r.Quality)
	})
}

// SkipFlashcard moves past the current card without rescheduling it. The
// caller uses it for a card it can no longer load.
func (e *Engine) SkipFlashcard(ctx context.Context, userID, itemID int64) (*FlashcardStep, error) {
	return e.advanceFlashcard(ctx, userID, itemID, nil)
}

// advanceFlashcard moves the deck past itemID, then runs review on it.
// The advanced deck is stored before the card is rescheduled, so a failed
// write never leaves a card that can be rated twice. If review fails the
// previous deck is put back.
func (e *Engine) advanceFlashcard(ctx context.Context, userID, itemID int64, review func() (*models.VocabularyItem, error)) (*FlashcardStep, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	state, err := e.load(ctx, userID, models.SessionFlashcard)
	if err != nil {
		return nil, err
	}
	fs := state.Flashcard
	if fs.CurrentIndex >= len(fs.ItemIDs) {
		return nil, errors.Wrap(apperrors.ErrSessionExpired, "deck already finished")
	}
	if want := fs.ItemIDs[fs.CurrentIndex]; itemID != want {
		return nil, errors.Wrapf(apperrors.ErrInvalidInput, "card %d is not the current card %d", itemID, want)
	}

	before := *fs
	fs.CurrentIndex++
	done := fs.CurrentIndex >= len(fs.ItemIDs)

	var reviewed *models.VocabularyItem
	if review == nil {
		fs.Skipped++
	}
	if err := e.persist(ctx, userID, state, done); err != nil {
		return nil, err
	}

	if review != nil {
		reviewed, err = review()
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			slog.Info("skipping vanished card", "user_id", userID, "item_id", itemID)
			fs.Skipped++
			if !done {
				if err := e.store.SetSession(ctx, userID, state); err != nil {
					slog.Warn("failed to store skipped card count", "user_id", userID, "error", err)
				}
			}
		case err != nil:
			state.Flashcard = &before
			if rerr := e.store.SetSession(ctx, userID, state); rerr != nil {
				slog.Error("failed to restore flashcard deck", "user_id", userID, "error", rerr)
			}
			return nil, err
		}
	}

	step := &FlashcardStep{
		Reviewed: reviewed,
		Skipped:  reviewed == nil,
		Index:    fs.CurrentIndex,
		Total:    len(fs.ItemIDs),
	}
	if !done {
		step.NextItemID = fs.ItemIDs[fs.CurrentIndex]
		return step, nil
	}
	step.Summary = &FlashcardSummary{Reviewed: len(fs.ItemIDs) - fs.Skipped, Skipped: fs.Skipped}
	return step, nil
}
