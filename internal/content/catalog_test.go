package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

func TestScenario(t *testing.T) {
	c := NewCatalog()

	s, err := c.Scenario("airport")
	require.NoError(t, err)
	assert.Len(t, s.Prompts, 4)

	_, err = c.Scenario("spaceship")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	keys := []string{}
	for _, s := range c.Scenarios() {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"airport", "hotel", "job_interview", "restaurant"}, keys)
}

func TestLevelTest(t *testing.T) {
	c := NewCatalog()

	qs, err := c.LevelTest("English")
	require.NoError(t, err)
	assert.Len(t, qs, 8)
	for _, q := range qs {
		assert.Len(t, q.Options, models.OptionsPerQuestion)
		assert.NotEmpty(t, q.Answer())
	}

	_, err = c.LevelTest("klingon")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientContent)
}

func TestLessons(t *testing.T) {
	c := NewCatalog()

	l, err := c.Lesson("english", "A2", "past_simple")
	require.NoError(t, err)
	assert.Equal(t, "Past Simple", l.Title)

	_, err = c.Lesson("english", "C2", "past_simple")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	c.AddLesson(Lesson{Key: "colors", Language: "english", Level: "A1", Title: "Colours"})
	assert.Len(t, c.Lessons("english", "A1"), 2)
	l, err = c.Lesson("english", "A1", "colors")
	require.NoError(t, err)
	assert.Equal(t, "Colours", l.Title)

	assert.NotEmpty(t, c.ChallengePool("english"))
	assert.Empty(t, c.ChallengePool("french"))
}
