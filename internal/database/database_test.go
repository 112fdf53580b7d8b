package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/spaced_repetition"
	"github.com/example/linguabot/pkg/models"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Connect(DriverSQLite, ":memory:"))
	t.Cleanup(func() {
		Close()
		DB = nil
	})
}

func createUser(t *testing.T, userID int64) {
	t.Helper()
	_, err := NewProfileRepository().Ensure(context.Background(), userID, "learner", "Test Learner", testNow)
	require.NoError(t, err)
}

func addWord(t *testing.T, repo *VocabularyRepository, userID int64, term string, due time.Time) *models.VocabularyItem {
	t.Helper()
	item := models.NewVocabularyItem(userID, term, "meaning of "+term, "", "english", testNow.AddDate(0, 0, -30))
	item.NextDue = due
	require.NoError(t, repo.Create(context.Background(), &item))
	require.NotZero(t, item.ID)
	return &item
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	err := Connect("mysql", "whatever")
	assert.Error(t, err)
}

func TestVocabularyRepository_CreateAndGet(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	repo := NewVocabularyRepository()

	item := addWord(t, repo, 1, "apple", testNow)

	got, err := repo.GetVocabItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Term)
	assert.Equal(t, "meaning of apple", got.Meaning)
	assert.Equal(t, models.DefaultEase, got.Ease)
	assert.Equal(t, models.DefaultIntervalDays, got.IntervalDays)
	assert.Zero(t, got.Repetitions)
	assert.True(t, got.NextDue.Equal(testNow), "next_due %v", got.NextDue)

	byTerm, err := repo.GetByTerm(ctx, 1, "english", "apple")
	require.NoError(t, err)
	assert.Equal(t, item.ID, byTerm.ID)

	_, err = repo.GetVocabItem(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetByTerm(ctx, 1, "english", "pear")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	dup := models.NewVocabularyItem(1, "apple", "again", "", "english", testNow)
	assert.Error(t, repo.Create(ctx, &dup))
}

func TestVocabularyRepository_SameTermInTwoLanguages(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	repo := NewVocabularyRepository()

	spanish := models.NewVocabularyItem(1, "casa", "house", "", "spanish", testNow)
	require.NoError(t, repo.Create(ctx, &spanish))
	italian := models.NewVocabularyItem(1, "casa", "home", "", "italian", testNow)
	require.NoError(t, repo.Create(ctx, &italian))
	assert.NotEqual(t, spanish.ID, italian.ID)

	got, err := repo.GetByTerm(ctx, 1, "italian", "casa")
	require.NoError(t, err)
	assert.Equal(t, "home", got.Meaning)
	_, err = repo.GetByTerm(ctx, 1, "french", "casa")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	onlySpanish, err := repo.ListByUser(ctx, 1, "spanish", 0)
	require.NoError(t, err)
	require.Len(t, onlySpanish, 1)
	assert.Equal(t, spanish.ID, onlySpanish[0].ID)

	all, err := repo.ListByUser(ctx, 1, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVocabularyRepository_ReviewRoundTrip(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	repo := NewVocabularyRepository()
	item := addWord(t, repo, 1, "river", testNow)

	sched := spaced_repetition.NewScheduler(repo).WithClock(func() time.Time { return testNow })
	for _, q := range []spaced_repetition.QualityResponse{5, 5, 4} {
		_, err := sched.Review(ctx, item.ID, q)
		require.NoError(t, err)
	}

	got, err := repo.GetVocabItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Repetitions)
	assert.Equal(t, 16, got.IntervalDays)
	assert.InDelta(t, 2.7, got.Ease, 1e-9)
	assert.True(t, got.NextDue.Equal(testNow.AddDate(0, 0, 16)))

	_, err = sched.Review(ctx, 12345, 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	missing := *got
	missing.ID = 12345
	assert.ErrorIs(t, repo.SaveVocabItem(ctx, &missing), apperrors.ErrNotFound)
}

func TestVocabularyRepository_ListDueItems(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	createUser(t, 2)
	repo := NewVocabularyRepository()

	c := addWord(t, repo, 1, "c", testNow.Add(-1*time.Hour))
	a := addWord(t, repo, 1, "a", testNow.Add(-3*time.Hour))
	addWord(t, repo, 1, "future", testNow.Add(time.Minute))
	b := addWord(t, repo, 1, "b", testNow.Add(-2*time.Hour))
	exact := addWord(t, repo, 1, "exact", testNow)
	addWord(t, repo, 2, "other", testNow.Add(-5*time.Hour))

	due, err := repo.ListDueItems(ctx, 1, testNow, 20)
	require.NoError(t, err)
	var ids []int64
	for _, it := range due {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int64{a.ID, b.ID, c.ID, exact.ID}, ids)

	due, err = repo.ListDueItems(ctx, 1, testNow, 2)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	n, err := repo.CountDue(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestVocabularyRepository_ListDeleteUpdate(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	repo := NewVocabularyRepository()

	first := addWord(t, repo, 1, "first", testNow)
	addWord(t, repo, 1, "second", testNow)

	all, err := repo.ListByUser(ctx, 1, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	limited, err := repo.ListByUser(ctx, 1, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	first.Meaning = "updated"
	first.Example = "a first example"
	require.NoError(t, repo.UpdateContent(ctx, first))
	got, err := repo.GetVocabItem(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Meaning)
	assert.Equal(t, "a first example", got.Example)

	assert.ErrorIs(t, repo.Delete(ctx, 2, first.ID), apperrors.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, 1, first.ID))
	_, err = repo.GetVocabItem(ctx, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVocabularyRepository_Stats(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	repo := NewVocabularyRepository()

	empty, err := repo.Stats(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.VocabularyStats{}, *empty)

	addWord(t, repo, 1, "due", testNow.Add(-time.Hour))
	mastered := addWord(t, repo, 1, "mastered", testNow.AddDate(0, 0, 40))
	mastered.Repetitions = 6
	mastered.IntervalDays = 45
	mastered.Ease = 2.9
	require.NoError(t, repo.SaveVocabItem(ctx, mastered))

	stats, err := repo.Stats(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Due)
	assert.Equal(t, 1, stats.Mastered)
	assert.InDelta(t, 2.7, stats.AvgEase, 1e-9)
}

func TestVocabularyRepository_DueCounts(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	createUser(t, 2)
	createUser(t, 3)
	repo := NewVocabularyRepository()

	addWord(t, repo, 1, "x", testNow.Add(-time.Hour))
	addWord(t, repo, 1, "y", testNow.Add(-time.Hour))
	addWord(t, repo, 2, "z", testNow.Add(-time.Hour))
	addWord(t, repo, 3, "later", testNow.Add(time.Hour))
	require.NoError(t, NewProfileRepository().SetNotifications(ctx, 2, false))

	counts, err := repo.DueCounts(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, []DueCount{{UserID: 1, Count: 2}}, counts)
}

func TestSessionRepository(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository()

	state, err := repo.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.IdleSession(7), state)

	quiz := models.SessionState{
		UserID: 7,
		Kind:   models.SessionQuiz,
		Quiz: &models.QuizSession{
			SessionID: "abc",
			Questions: []models.Question{{Prompt: "cat", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2}},
			Mode:      models.QuizModeExam,
			Answers:   []models.QuizAnswer{},
		},
	}
	require.NoError(t, repo.SetSession(ctx, 7, quiz))

	got, err := repo.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, quiz, got)

	// Replacing keeps a single row
	roleplay := models.SessionState{UserID: 7, Kind: models.SessionRoleplay, Roleplay: &models.RoleplaySession{ScenarioKey: "hotel", CurrentStep: 2}}
	require.NoError(t, repo.SetSession(ctx, 7, roleplay))
	got, err = repo.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, roleplay, got)

	require.NoError(t, repo.SetSession(ctx, 7, models.IdleSession(7)))
	got, err = repo.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.SessionIdle, got.Kind)
}

func TestSessionRepository_DropsUnreadableRow(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository()

	_, err := DB.Exec(`INSERT INTO user_state (user_id, kind, payload, updated_at) VALUES (?, ?, ?, ?)`, 5, "quiz", "{not json", testNow)
	require.NoError(t, err)

	state, err := repo.GetSession(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.SessionIdle, state.Kind)

	var n int
	require.NoError(t, DB.Get(&n, `SELECT COUNT(*) FROM user_state WHERE user_id = ?`, 5))
	assert.Zero(t, n)
}

func TestProfileRepository(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository()

	_, err := repo.Get(ctx, 1)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.ErrorIs(t, repo.AddXP(ctx, 1, 10), apperrors.ErrNotFound)

	p, err := repo.Ensure(ctx, 1, "ann", "Ann", testNow)
	require.NoError(t, err)
	assert.Equal(t, "A1", p.Level)
	assert.Equal(t, "english", p.Language)
	assert.True(t, p.NotificationsEnabled)
	assert.Nil(t, p.LastActive)

	require.NoError(t, repo.AddXP(ctx, 1, 10))
	require.NoError(t, repo.AddXP(ctx, 1, 50))
	require.NoError(t, repo.SetLevel(ctx, 1, "B2"))
	require.NoError(t, repo.RecordAnswers(ctx, 1, 2, 3))

	p, err = repo.Ensure(ctx, 1, "ann_new", "Ann N", testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "ann_new", p.Username)
	assert.Equal(t, 60, p.XP)
	assert.Equal(t, "B2", p.Level)
	assert.Equal(t, 2, p.TotalCorrect)
	assert.Equal(t, 3, p.TotalQuestions)
}

func TestProfileRepository_Touch(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository()
	createUser(t, 1)

	for _, tc := range []struct {
		at   time.Time
		want int
	}{
		{testNow, 1},
		{testNow.Add(3 * time.Hour), 1},
		{testNow.AddDate(0, 0, 1), 2},
		{testNow.AddDate(0, 0, 2), 3},
		{testNow.AddDate(0, 0, 5), 1},
	} {
		streak, err := repo.Touch(ctx, 1, tc.at)
		require.NoError(t, err)
		assert.Equal(t, tc.want, streak, "at %v", tc.at)
	}

	_, err := repo.Touch(ctx, 99, testNow)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNextStreak(t *testing.T) {
	late := time.Date(2025, 3, 9, 23, 50, 0, 0, time.UTC)
	tests := []struct {
		name   string
		last   *time.Time
		streak int
		now    time.Time
		want   int
	}{
		{"first activity", nil, 0, testNow, 1},
		{"same day", &late, 4, late.Add(5 * time.Minute), 4},
		{"next day", &late, 4, late.Add(20 * time.Minute), 5},
		{"gap", &late, 4, late.AddDate(0, 0, 3), 1},
		{"clock went back", &testNow, 2, testNow.AddDate(0, 0, -1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.last, tt.streak, tt.now))
		})
	}
}

func TestProfileRepository_BadgesAndLeaderboard(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository()
	for _, id := range []int64{1, 2, 3} {
		createUser(t, id)
	}

	isNew, err := repo.AwardBadge(ctx, 1, models.BadgeQuizAce, testNow)
	require.NoError(t, err)
	assert.True(t, isNew)
	isNew, err = repo.AwardBadge(ctx, 1, models.BadgeQuizAce, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, isNew)

	badges, err := repo.Badges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, models.BadgeQuizAce, badges[0].BadgeID)

	require.NoError(t, repo.AddXP(ctx, 2, 100))
	require.NoError(t, repo.AddXP(ctx, 3, 40))
	require.NoError(t, repo.AddXP(ctx, 1, 40))

	top, err := repo.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, int64(1), top[1].UserID)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestQuizResultRepository(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	repo := NewQuizResultRepository()

	first := &models.QuizResult{UserID: 1, SessionID: "s1", Mode: models.QuizModeQuiz, Score: 2, Total: 3, CompletedAt: testNow}
	second := &models.QuizResult{UserID: 1, SessionID: "s2", Mode: models.QuizModeExam, Score: 7, Total: 8,
		Answers: `[{"question_index":0,"chosen_index":1,"correct":true}]`, CompletedAt: testNow.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotZero(t, first.ID)

	// Session ids are unique
	assert.Error(t, repo.Create(ctx, &models.QuizResult{UserID: 1, SessionID: "s1", Mode: models.QuizModeQuiz, Total: 1}))

	results, err := repo.ListByUser(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "s2", results[0].SessionID)
	assert.Equal(t, models.QuizModeExam, results[0].Mode)
	assert.Equal(t, "[]", results[1].Answers)
}

func TestLessonRepository(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	createUser(t, 1)
	createUser(t, 2)
	repo := NewLessonRepository()

	isNew, err := repo.MarkDone(ctx, &models.LessonProgress{
		UserID: 1, Language: "english", LessonKey: "greetings", Score: 2, Total: 3, CompletedAt: testNow,
	})
	require.NoError(t, err)
	assert.True(t, isNew)

	// A weaker retry keeps the best score
	isNew, err = repo.MarkDone(ctx, &models.LessonProgress{
		UserID: 1, Language: "english", LessonKey: "greetings", Score: 1, Total: 3, CompletedAt: testNow.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, isNew)

	var best models.LessonProgress
	require.NoError(t, DB.Get(&best, DB.Rebind(`
		SELECT user_id, language, lesson_key, score, total, completed_at
		FROM lesson_progress WHERE user_id = ? AND lesson_key = ?`), 1, "greetings"))
	assert.Equal(t, 2, best.Score)
	assert.True(t, best.CompletedAt.Equal(testNow.Add(time.Hour)))

	_, err = repo.MarkDone(ctx, &models.LessonProgress{
		UserID: 1, Language: "spanish", LessonKey: "greetings", Score: 3, Total: 3, CompletedAt: testNow,
	})
	require.NoError(t, err)

	done, err := repo.Completed(ctx, 1, "english")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"greetings": true}, done)

	done, err = repo.Completed(ctx, 2, "english")
	require.NoError(t, err)
	assert.Empty(t, done)

	n, err := repo.CountDone(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
