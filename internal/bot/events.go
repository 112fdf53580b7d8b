package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/example/linguabot/internal/apperrors"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/internal/spaced_repetition"
)

// EventKind identifies what a button press asks for
type EventKind int

const (
	EventMenu EventKind = iota + 1
	EventQuizAnswer
	EventFlashcardShow
	EventFlashcardRate
	EventRoleplay
	EventTutor
	EventLesson
)

// Callback data prefixes. Telegram caps callback data at 64 bytes.
const (
	prefixMenu          = "menu"
	prefixQuizAnswer    = "qa"
	prefixFlashcardShow = "fs"
	prefixFlashcardRate = "fc"
	prefixRoleplay      = "rp"
	prefixTutor         = "tu"
	prefixLesson        = "ls"
)

// Menu actions
const (
	actionMenu      = "main"
	actionReview    = "review"
	actionQuiz      = "quiz"
	actionExam      = "exam"
	actionChallenge = "challenge"
	actionLessons   = "lessons"
	actionRoleplay  = "roleplay"
	actionTutor     = "tutor"
	actionStats     = "stats"
	actionDeck      = "deck"
	actionExit      = "exit"
	actionHelp      = "help"
)

// Event is a decoded button press
type Event struct {
	Kind EventKind

	Action string                  // EventMenu
	Answer session.QuizAnswerEvent // EventQuizAnswer
	Rating session.FlashcardRating // EventFlashcardRate
	ItemID int64                   // EventFlashcardShow
	Key    string                  // EventRoleplay, EventLesson
	Level  string                  // EventLesson
	Mode   string                  // EventTutor
}

// ParseCallback decodes callback data produced by the keyboards in this package.
func ParseCallback(data string) (Event, error) {
	parts := strings.Split(data, ":")
	bad := func(reason string) (Event, error) {
		return Event{}, errors.Wrapf(apperrors.ErrInvalidInput, "callback %q: %s", data, reason)
	}

	switch parts[0] {
	case prefixMenu:
		if len(parts) != 2 || parts[1] == "" {
			return bad("want menu:<action>")
		}
		return Event{Kind: EventMenu, Action: parts[1]}, nil

	case prefixQuizAnswer:
		if len(parts) != 4 || parts[1] == "" {
			return bad("want qa:<session>:<question>:<choice>")
		}
		qi, err1 := strconv.Atoi(parts[2])
		choice, err2 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil {
			return bad("question and choice must be numbers")
		}
		return Event{Kind: EventQuizAnswer, Answer: session.QuizAnswerEvent{
			SessionID:     parts[1],
			QuestionIndex: qi,
			Choice:        choice,
		}}, nil

	case prefixFlashcardShow:
		if len(parts) != 2 {
			return bad("want fs:<item>")
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return bad("item must be a number")
		}
		return Event{Kind: EventFlashcardShow, ItemID: id}, nil

	case prefixFlashcardRate:
		if len(parts) != 3 {
			return bad("want fc:<item>:<quality>")
		}
		id, err1 := strconv.ParseInt(parts[1], 10, 64)
		q, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil {
			return bad("item and quality must be numbers")
		}
		return Event{Kind: EventFlashcardRate, Rating: session.FlashcardRating{
			ItemID:  id,
			Quality: spaced_repetition.QualityResponse(q),
		}}, nil

	case prefixRoleplay:
		if len(parts) != 2 || parts[1] == "" {
			return bad("want rp:<scenario>")
		}
		return Event{Kind: EventRoleplay, Key: parts[1]}, nil

	case prefixTutor:
		if len(parts) != 2 || parts[1] == "" {
			return bad("want tu:<mode>")
		}
		return Event{Kind: EventTutor, Mode: parts[1]}, nil

	case prefixLesson:
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return bad("want ls:<level>:<lesson>")
		}
		return Event{Kind: EventLesson, Level: parts[1], Key: parts[2]}, nil
	}
	return bad("unknown prefix")
}

func menuData(action string) string { return prefixMenu + ":" + action }

func quizAnswerData(sessionID string, question, choice int) string {
	return fmt.Sprintf("%s:%s:%d:%d", prefixQuizAnswer, sessionID, question, choice)
}

func flashcardShowData(itemID int64) string {
	return fmt.Sprintf("%s:%d", prefixFlashcardShow, itemID)
}

func flashcardRateData(itemID int64, q spaced_repetition.QualityResponse) string {
	return fmt.Sprintf("%s:%d:%d", prefixFlashcardRate, itemID, int(q))
}

func roleplayData(key string) string { return prefixRoleplay + ":" + key }

func tutorData(mode string) string { return prefixTutor + ":" + mode }

func lessonData(level, key string) string { return prefixLesson + ":" + level + ":" + key }
