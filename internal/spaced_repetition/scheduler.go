package spaced_repetition

import (
	"context"
	"time"

	"github.com/example/linguabot/pkg/models"
)

// Store is the persistence the scheduler needs. GetVocabItem returns an error
// matching apperrors.ErrNotFound when the id does not exist.
type Store interface {
	GetVocabItem(ctx context.Context, id int64) (*models.VocabularyItem, error)
	SaveVocabItem(ctx context.Context, item *models.VocabularyItem) error
	ListDueItems(ctx context.Context, userID int64, now time.Time, limit int) ([]models.VocabularyItem, error)
}

// Scheduler applies SM-2 reviews to stored items
type Scheduler struct {
	store Store
	sm2   *SM2
	now   func() time.Time
}

// NewScheduler creates a scheduler over store using the standard SM-2 settings
func NewScheduler(store Store) *Scheduler {
	return &Scheduler{
		store: store,
		sm2:   NewSM2(),
		now:   time.Now,
	}
}

// WithClock replaces the time source, mainly for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Review rates item itemID and persists its new schedule.
// The quality is validated before the store is touched.
func (s *Scheduler) Review(ctx context.Context, itemID int64, quality QualityResponse) (*models.VocabularyItem, error) {
	if err := ValidateQuality(quality); err != nil {
		return nil, err
	}

	item, err := s.store.GetVocabItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.sm2.Apply(item, quality, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.SaveVocabItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Due returns the user's next review batch.
func (s *Scheduler) Due(ctx context.Context, userID int64) ([]models.VocabularyItem, error) {
	return s.store.ListDueItems(ctx, userID, s.now().UTC(), DuePageSize)
}

// SM2 exposes the underlying algorithm settings.
func (s *Scheduler) SM2() *SM2 {
	return s.sm2
}
