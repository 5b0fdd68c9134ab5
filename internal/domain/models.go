package domain

import (
	"fmt"
	"time"
)

// RoomState is the room-wide lifecycle state. There is no room-wide "ended"
// state; each player finishes individually.
type RoomState string

const (
	RoomWaiting RoomState = "waiting"
	RoomPlaying RoomState = "playing"
)

// Question models a multiple choice question with exactly one correct option key.
type Question struct {
	ID      int               `json:"id" bson:"id"`
	Type    string            `json:"type" bson:"type"`
	Text    string            `json:"text" bson:"text"`
	Options map[string]string `json:"options" bson:"options"`
	Correct string            `json:"correct" bson:"correct"`
}

// PublicQuestion is the client-facing projection of a Question. It carries no
// correct key.
type PublicQuestion struct {
	ID      int               `json:"id"`
	Type    string            `json:"type"`
	Text    string            `json:"text"`
	Options map[string]string `json:"options"`
}

// Validate checks that the correct key is one of the offered options.
func (q Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: question %d has no options", ErrInvalidBank, q.ID)
	}
	for key := range q.Options {
		if key == "" {
			return fmt.Errorf("%w: question %d has an empty option key", ErrInvalidBank, q.ID)
		}
	}
	if _, ok := q.Options[q.Correct]; !ok {
		return fmt.Errorf("%w: question %d correct key %q is not an option", ErrInvalidBank, q.ID, q.Correct)
	}
	return nil
}

// Public strips the correct key.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:      q.ID,
		Type:    q.Type,
		Text:    q.Text,
		Options: copyOptions(q.Options),
	}
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	q.Options = copyOptions(q.Options)
	return q
}

func copyOptions(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// QuestionBank is the ordered, read-only source of questions for new rooms.
type QuestionBank struct {
	ID        string     `json:"id" bson:"_id"`
	Questions []Question `json:"questions" bson:"questions"`
}

// Validate checks every question and that question ids are unique.
func (b QuestionBank) Validate() error {
	seen := make(map[int]struct{}, len(b.Questions))
	for _, q := range b.Questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d in bank %q", ErrInvalidBank, q.ID, b.ID)
		}
		seen[q.ID] = struct{}{}
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a deep copy of the questions so that rooms never share
// state with the bank they were created from.
func (b QuestionBank) Snapshot() []Question {
	out := make([]Question, len(b.Questions))
	for i, q := range b.Questions {
		out[i] = q.Clone()
	}
	return out
}

// Player is a roster member. Answers maps question id to the chosen option key
// and is only written by the player's own submits.
type Player struct {
	ID       string
	Name     string
	Score    int
	Answers  map[int]string
	Finished bool
	JoinedAt time.Time
}

// AnswerSubmission models a single answer sent by a client.
type AnswerSubmission struct {
	QuestionID int
	OptionKey  string
}

// PlayerView is the roster entry broadcast to clients.
type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Finished bool   `json:"finished"`
}

// RoomUpdate is the roster and state snapshot sent on every roster change.
// IsHost is computed per recipient.
type RoomUpdate struct {
	RoomID  string       `json:"roomId"`
	Players []PlayerView `json:"players"`
	State   RoomState    `json:"state"`
	HostID  string       `json:"hostId"`
	IsHost  bool         `json:"isHost"`
}

// GameStarted is broadcast once when the host starts the exam. Times are epoch milliseconds.
type GameStarted struct {
	Questions  []PublicQuestion `json:"questions"`
	StartTime  int64            `json:"startTime"`
	Deadline   int64            `json:"deadline,omitempty"`
	DurationMS int64            `json:"durationMs,omitempty"`
}

// ExamResult is the individual outcome sent only to the finishing player.
type ExamResult struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correctCount"`
	Total        int `json:"total"`
}

// EventType names outbound messages.
type EventType string

const (
	EventConnected   EventType = "connected"
	EventRoomUpdate  EventType = "roomUpdate"
	EventGameStarted EventType = "gameStarted"
	EventExamResult  EventType = "examResult"
	EventError       EventType = "error"
)

// Event is an outbound message addressed to a single connection.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}
