// Package quiz builds multiple-choice questions from vocabulary and content.
package quiz

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

// distractorCount is the number of wrong options per generated question.
const distractorCount = models.OptionsPerQuestion - 1

// Generator produces shuffled quizzes. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a generator seeded from the clock
func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewGeneratorWithSource creates a generator over src
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// FromVocabulary builds up to count questions asking for the meaning of each
// subject item. Items are de-duplicated by meaning; at least four distinct
// meanings are required so every question gets three distractors.
func (g *Generator) FromVocabulary(items []models.VocabularyItem, count int) ([]models.Question, error) {
	if count <= 0 {
		return nil, errors.Wrapf(apperrors.ErrInvalidInput, "question count %d", count)
	}

	distinct := distinctByMeaning(items)
	if len(distinct) < models.OptionsPerQuestion {
		return nil, errors.Wrapf(apperrors.ErrInsufficientContent,
			"need %d distinct words, have %d", models.OptionsPerQuestion, len(distinct))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Shuffle subjects
	g.rnd.Shuffle(len(distinct), func(i, j int) {
		distinct[i], distinct[j] = distinct[j], distinct[i]
	})

	subjects := distinct
	if len(subjects) > count {
		subjects = subjects[:count]
	}

	questions := make([]models.Question, 0, len(subjects))
	for _, subject := range subjects {
		options := append(g.distractors(subject, distinct), subject.Meaning)
		correctIndex := g.shuffleOptions(options, len(options)-1)

		questions = append(questions, models.Question{
			Prompt:       subject.Term,
			Options:      options,
			CorrectIndex: correctIndex,
		})
	}

	return questions, nil
}

// Shuffle copies up to count authored questions in random order, reshuffling
// each question's options.
func (g *Generator) Shuffle(questions []models.Question, count int) ([]models.Question, error) {
	if count <= 0 {
		return nil, errors.Wrapf(apperrors.ErrInvalidInput, "question count %d", count)
	}
	if len(questions) == 0 {
		return nil, errors.Wrap(apperrors.ErrInsufficientContent, "no questions available")
	}
	for i, q := range questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, errors.Wrapf(apperrors.ErrInvalidInput, "question %d has correct index %d of %d options",
				i, q.CorrectIndex, len(q.Options))
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	order := g.rnd.Perm(len(questions))
	if len(order) > count {
		order = order[:count]
	}

	out := make([]models.Question, 0, len(order))
	for _, idx := range order {
		src := questions[idx]
		options := append([]string(nil), src.Options...)
		out = append(out, models.Question{
			Prompt:       src.Prompt,
			Options:      options,
			CorrectIndex: g.shuffleOptions(options, src.CorrectIndex),
		})
	}
	return out, nil
}

// distractors samples other items' meanings without replacement.
func (g *Generator) distractors(subject models.VocabularyItem, pool []models.VocabularyItem) []string {
	candidates := make([]string, 0, len(pool)-1)
	for _, it := range pool {
		if it.Meaning != subject.Meaning {
			candidates = append(candidates, it.Meaning)
		}
	}

	options := make([]string, 0, models.OptionsPerQuestion)
	for _, i := range g.rnd.Perm(len(candidates))[:distractorCount] {
		options = append(options, candidates[i])
	}
	return options
}

// shuffleOptions shuffles options in place and returns the new position of
// the element that was at correctIndex.
func (g *Generator) shuffleOptions(options []string, correctIndex int) int {
	g.rnd.Shuffle(len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})
	return correctIndex
}

// distinctByMeaning keeps the first item for every meaning, preserving order.
func distinctByMeaning(items []models.VocabularyItem) []models.VocabularyItem {
	seen := make(map[string]bool, len(items))
	out := make([]models.VocabularyItem, 0, len(items))
	for _, it := range items {
		if it.Meaning == "" || seen[it.Meaning] {
			continue
		}
		seen[it.Meaning] = true
		out = append(out, it)
	}
	return out
}
