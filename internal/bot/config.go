package bot

// Rewards lists the XP granted for each activity
type Rewards struct {
	QuizCorrect      int // Per correct quiz answer
	PerfectQuiz      int // Bonus for a quiz without mistakes
	LessonComplete   int
	RoleplayComplete int
	FlashcardSession int // Per finished flashcard deck
	WordSaved        int
}

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of questions in a vocabulary quiz
	QuizQuestionCount int
	// Number of questions drawn for a challenge
	ChallengeSize int
	// Words shown by /deck
	DeckPageSize int
	// Largest document accepted for import, in bytes
	MaxImportBytes int64
	// Words needed for the word hoarder badge
	WordHoarderThreshold int
	Rewards              Rewards
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		QuizQuestionCount:    5,
		ChallengeSize:        10,
		DeckPageSize:         30,
		MaxImportBytes:       2 << 20,
		WordHoarderThreshold: 100,
		Rewards: Rewards{
			QuizCorrect:      10,
			PerfectQuiz:      50,
			LessonComplete:   50,
			RoleplayComplete: 50,
			FlashcardSession: 15,
			WordSaved:        2,
		},
	}
}
