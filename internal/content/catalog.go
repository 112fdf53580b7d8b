// Package content supplies structured learning material: roleplay scripts,
// the placement test and lesson quizzes.
package content

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/pkg/models"
)

// Scenario is a scripted roleplay dialogue
type Scenario struct {
	Key     string
	Title   string
	Context string
	Prompts []string
	Vocab   []string
}

// Lesson is a short topic with its quiz
type Lesson struct {
	Key      string
	Language string
	Level    string
	Title    string
	Body     string
	Quiz     []models.Question
}

// Catalog is an in-memory content source
type Catalog struct {
	scenarios map[string]Scenario
	levelTest map[string][]models.Question
	lessons   []Lesson
}

// NewCatalog returns a catalog loaded with the built-in material
func NewCatalog() *Catalog {
	c := &Catalog{
		scenarios: make(map[string]Scenario),
		levelTest: map[string][]models.Question{"english": englishLevelTest},
	}
	for _, s := range builtinScenarios {
		c.scenarios[s.Key] = s
	}
	c.lessons = append(c.lessons, builtinLessons...)
	return c
}

// AddLesson registers an additional lesson, replacing one with the same key, language and level.
func (c *Catalog) AddLesson(l Lesson) {
	for i, existing := range c.lessons {
		if existing.Key == l.Key && existing.Language == l.Language && existing.Level == l.Level {
			c.lessons[i] = l
			return
		}
	}
	c.lessons = append(c.lessons, l)
}

// Scenario looks a roleplay up by key.
func (c *Catalog) Scenario(key string) (Scenario, error) {
	s, ok := c.scenarios[key]
	if !ok {
		return Scenario{}, errors.Wrapf(apperrors.ErrNotFound, "scenario %q", key)
	}
	return s, nil
}

// Scenarios lists all roleplays ordered by key.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LevelTest returns the placement questions for language.
func (c *Catalog) LevelTest(language string) ([]models.Question, error) {
	qs, ok := c.levelTest[strings.ToLower(language)]
	if !ok || len(qs) == 0 {
		return nil, errors.Wrapf(apperrors.ErrInsufficientContent, "no level test for %q", language)
	}
	return append([]models.Question(nil), qs...), nil
}

// Lesson finds a lesson by language, level and key.
func (c *Catalog) Lesson(language, level, key string) (Lesson, error) {
	for _, l := range c.lessons {
		if l.Language == language && l.Level == level && l.Key == key {
			return l, nil
		}
	}
	return Lesson{}, errors.Wrapf(apperrors.ErrNotFound, "lesson %s/%s/%s", language, level, key)
}

// Lessons lists lessons for a language and level, in registration order.
func (c *Catalog) Lessons(language, level string) []Lesson {
	var out []Lesson
	for _, l := range c.lessons {
		if l.Language == language && l.Level == level {
			out = append(out, l)
		}
	}
	return out
}

// ChallengePool gathers every lesson question for a language.
func (c *Catalog) ChallengePool(language string) []models.Question {
	var pool []models.Question
	for _, l := range c.lessons {
		if l.Language == language {
			pool = append(pool, l.Quiz...)
		}
	}
	return pool
}
