package quiz

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

func vocab(n int) []models.VocabularyItem {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := make([]models.VocabularyItem, 0, n)
	for i := 0; i < n; i++ {
		it := models.NewVocabularyItem(1, fmt.Sprintf("term-%d", i), fmt.Sprintf("meaning-%d", i), "", "english", now)
		it.ID = int64(i + 1)
		items = append(items, it)
	}
	return items
}

func TestFromVocabulary_Invariant(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		g := NewGeneratorWithSource(rand.NewSource(seed))
		items := vocab(4 + int(seed%7))
		meaningOf := make(map[string]string)
		for _, it := range items {
			meaningOf[it.Term] = it.Meaning
		}

		count := 1 + int(seed)%len(items)
		questions, err := g.FromVocabulary(items, count)
		require.NoError(t, err)
		require.Len(t, questions, count)

		seen := make(map[string]bool)
		for _, q := range questions {
			want, ok := meaningOf[q.Prompt]
			require.True(t, ok, "prompt %q is not a source term", q.Prompt)
			assert.False(t, seen[q.Prompt], "subject %q repeated", q.Prompt)
			seen[q.Prompt] = true

			require.Len(t, q.Options, models.OptionsPerQuestion)
			matches := 0
			for _, opt := range q.Options {
				if opt == want {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "exactly one option must be the true meaning")
			assert.Equal(t, want, q.Options[q.CorrectIndex])

			distinct := make(map[string]bool)
			for _, opt := range q.Options {
				distinct[opt] = true
			}
			assert.Len(t, distinct, models.OptionsPerQuestion, "options must not repeat")
		}
	}
}

func TestFromVocabulary_CapsAtAvailableItems(t *testing.T) {
	g := NewGenerator()
	questions, err := g.FromVocabulary(vocab(5), 10)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestFromVocabulary_InsufficientContent(t *testing.T) {
	g := NewGenerator()

	_, err := g.FromVocabulary(vocab(3), 3)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientContent)

	// Four items but only three distinct meanings
	items := vocab(4)
	items[3].Meaning = items[0].Meaning
	_, err = g.FromVocabulary(items, 4)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientContent)
}

func TestFromVocabulary_InvalidCount(t *testing.T) {
	_, err := NewGenerator().FromVocabulary(vocab(6), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestShuffle_KeepsAnswers(t *testing.T) {
	source := []models.Question{
		{Prompt: "She ___ to school every day.", Options: []string{"go", "goes", "going", "went"}, CorrectIndex: 1},
		{Prompt: "By the time she arrived, he ___ left.", Options: []string{"has", "had", "have", "will have"}, CorrectIndex: 1},
		{Prompt: "Hardly ___ he sat down when the phone rang.", Options: []string{"had", "did", "was", "has"}, CorrectIndex: 0},
	}
	answers := map[string]string{}
	for _, q := range source {
		answers[q.Prompt] = q.Answer()
	}

	g := NewGeneratorWithSource(rand.NewSource(3))
	out, err := g.Shuffle(source, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, q := range out {
		assert.Equal(t, answers[q.Prompt], q.Answer())
	}

	// The source slice is left untouched
	assert.Equal(t, []string{"go", "goes", "going", "went"}, source[0].Options)
	assert.Equal(t, 1, source[0].CorrectIndex)
}

func TestShuffle_Errors(t *testing.T) {
	g := NewGenerator()

	_, err := g.Shuffle(nil, 5)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientContent)

	_, err = g.Shuffle([]models.Question{{Prompt: "x", Options: []string{"a"}, CorrectIndex: 2}}, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
