package models

import "fmt"

// SessionKind tags which interactive activity a user is in
type SessionKind string

const (
	SessionIdle      SessionKind = "idle"
	SessionQuiz      SessionKind = "quiz"
	SessionFlashcard SessionKind = "flashcard"
	SessionRoleplay  SessionKind = "roleplay"
	SessionTutor     SessionKind = "tutor"
)

// QuizMode tells the caller how a quiz came about and what to do on completion
type QuizMode string

const (
	QuizModeQuiz      QuizMode = "quiz"
	QuizModeLesson    QuizMode = "lesson"
	QuizModeChallenge QuizMode = "challenge"
	QuizModeExam      QuizMode = "exam"
	QuizModeReview    QuizMode = "review"
)

// Valid reports whether m is one of the known modes.
func (m QuizMode) Valid() bool {
	switch m {
	case QuizModeQuiz, QuizModeLesson, QuizModeChallenge, QuizModeExam, QuizModeReview:
		return true
	}
	return false
}

// OptionsPerQuestion is the number of choices in a generated question.
const OptionsPerQuestion = 4

// Question is a multiple-choice question snapshot
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Answer returns the text of the correct option.
func (q Question) Answer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// QuizAnswer records what the user picked for one question
type QuizAnswer struct {
	QuestionIndex int  `json:"question_index"`
	ChosenIndex   int  `json:"chosen_index"`
	Correct       bool `json:"correct"`
}

// QuizSession is the payload of a quiz in progress
type QuizSession struct {
	SessionID    string       `json:"session_id"`
	Questions    []Question   `json:"questions"`
	CurrentIndex int          `json:"current_index"`
	Score        int          `json:"score"`
	Mode         QuizMode     `json:"mode"`
	Answers      []QuizAnswer `json:"answers"`
	LessonKey    string       `json:"lesson_key,omitempty"`
}

// FlashcardSession is the payload of a flashcard deck in progress
type FlashcardSession struct {
	ItemIDs      []int64 `json:"item_ids"`
	CurrentIndex int     `json:"current_index"`
	Skipped      int     `json:"skipped,omitempty"` // Cards that vanished before they were rated
}

// RoleplaySession is the payload of a scripted dialogue in progress
type RoleplaySession struct {
	ScenarioKey string `json:"scenario_key"`
	CurrentStep int    `json:"current_step"`
}

// TutorSession keeps free text routed to the tutor
type TutorSession struct {
	Mode string `json:"mode"` // "chat" or "grammar"
}

// SessionState is the single live session slot of a user.
// Exactly the payload matching Kind is set; idle has none.
type SessionState struct {
	UserID    int64             `json:"user_id"`
	Kind      SessionKind       `json:"kind"`
	Quiz      *QuizSession      `json:"quiz,omitempty"`
	Flashcard *FlashcardSession `json:"flashcard,omitempty"`
	Roleplay  *RoleplaySession  `json:"roleplay,omitempty"`
	Tutor     *TutorSession     `json:"tutor,omitempty"`
}

// IdleSession returns the empty slot for a user.
func IdleSession(userID int64) SessionState {
	return SessionState{UserID: userID, Kind: SessionIdle}
}

// Validate checks that the payload matches the kind.
func (s *SessionState) Validate() error {
	set := 0
	for _, present := range []bool{s.Quiz != nil, s.Flashcard != nil, s.Roleplay != nil, s.Tutor != nil} {
		if present {
			set++
		}
	}

	var ok bool
	switch s.Kind {
	case SessionIdle:
		ok = set == 0
	case SessionQuiz:
		ok = set == 1 && s.Quiz != nil
	case SessionFlashcard:
		ok = set == 1 && s.Flashcard != nil
	case SessionRoleplay:
		ok = set == 1 && s.Roleplay != nil
	case SessionTutor:
		ok = set == 1 && s.Tutor != nil
	default:
		return fmt.Errorf("unknown session kind %q", s.Kind)
	}
	if !ok {
		return fmt.Errorf("session payload does not match kind %q", s.Kind)
	}
	return nil
}
