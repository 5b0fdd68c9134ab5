package domain

import "errors"

var (
	// ErrInvalidJoin is returned when a join carries an empty name or room id.
	ErrInvalidJoin = errors.New("name and room id are required")
	// ErrRoomNotFound is returned when a command targets a room that does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrPlayerNotFound is returned when a user acts on a room they have not joined.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrNotHost is returned when a non-host tries to start the exam.
	ErrNotHost = errors.New("only the host can start the exam")
	// ErrAlreadyStarted is returned when start is sent to a room that is already playing.
	ErrAlreadyStarted = errors.New("exam already started")
	// ErrNotPlaying is returned for submits while the room is still waiting.
	ErrNotPlaying = errors.New("exam has not started")
	// ErrDeadlinePassed is returned for submits after the exam deadline.
	ErrDeadlinePassed = errors.New("exam deadline has passed")
	// ErrAlreadyFinished is returned for submits after the player finished.
	ErrAlreadyFinished = errors.New("player already finished the exam")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option key is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrInvalidBank indicates a question bank failed validation.
	ErrInvalidBank = errors.New("invalid question bank")
)
