package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"exam-room-service/internal/domain"
)

// DefaultBankID is the question bank used when none is configured.
const DefaultBankID = "utbk"

// RoomRepository abstracts where live rooms are registered (in-memory, Redis-aware, etc).
// Implementations must hold at most one live Room per id.
type RoomRepository interface {
	GetOrCreate(roomID string, bank domain.QuestionBank) *Room
	Get(roomID string) (*Room, bool)
	DeleteIfEmpty(roomID string)
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// ResultRecorder stores finished exam results outside the process.
type ResultRecorder interface {
	RecordResult(ctx context.Context, roomID string, player domain.PlayerView, result domain.ExamResult) error
}

// Options tunes an ExamService. Zero values fall back to sane defaults.
type Options struct {
	BankID       string
	ExamDuration time.Duration
	Recorder     ResultRecorder
	Logger       *slog.Logger
}

// ExamService contains the room and exam use cases.
type ExamService struct {
	rooms    RoomRepository
	banks    BankRepository
	notifier Notifier
	recorder ResultRecorder
	bankID   string
	duration time.Duration
	logger   *slog.Logger
}

func NewExamService(rooms RoomRepository, banks BankRepository, notifier Notifier, opts Options) *ExamService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if opts.BankID == "" {
		opts.BankID = DefaultBankID
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ExamService{
		rooms:    rooms,
		banks:    banks,
		notifier: notifier,
		recorder: opts.Recorder,
		bankID:   opts.BankID,
		duration: opts.ExamDuration,
		logger:   opts.Logger,
	}
}

// Join adds a player to a room, creating the room on first join.
func (s *ExamService) Join(ctx context.Context, roomID, playerID, name string) (domain.RoomUpdate, error) {
	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(name) == "" || playerID == "" {
		return domain.RoomUpdate{}, domain.ErrInvalidJoin
	}

	bank, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		return domain.RoomUpdate{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return domain.RoomUpdate{}, err
		}
		room := s.rooms.GetOrCreate(roomID, bank)
		// A closed room was emptied and dropped after the lookup; look again.
		if update, ok := room.join(playerID, name, s.notifier); ok {
			s.logger.Info("player joined", "room", roomID, "player", playerID, "name", name, "players", len(update.Players))
			return update, nil
		}
	}
}

// Start moves the room to playing and broadcasts the questions. Only the host may start.
func (s *ExamService) Start(_ context.Context, roomID, playerID string) (domain.GameStarted, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.GameStarted{}, domain.ErrRoomNotFound
	}
	started, err := room.start(playerID, s.duration, s.notifier, func() { s.expire(room) })
	if err != nil {
		return domain.GameStarted{}, err
	}
	s.logger.Info("exam started", "room", roomID, "host", playerID, "questions", len(started.Questions), "duration", s.duration)
	return started, nil
}

// SubmitAnswer records an answer in the player's own ledger.
func (s *ExamService) SubmitAnswer(_ context.Context, roomID, playerID string, submission domain.AnswerSubmission) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.ErrRoomNotFound
	}
	return room.submit(playerID, submission)
}

// Finish scores the player's ledger and sends the result to that player only.
func (s *ExamService) Finish(ctx context.Context, roomID, playerID string) (domain.ExamResult, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.ExamResult{}, domain.ErrRoomNotFound
	}
	res, err := room.finish(playerID, s.notifier)
	if err != nil {
		return domain.ExamResult{}, err
	}
	s.logger.Info("exam finished", "room", roomID, "player", playerID, "score", res.result.Score, "correct", res.result.CorrectCount)
	s.record(ctx, roomID, res)
	return res.result, nil
}

// Leave removes a player and drops the room once it is empty.
func (s *ExamService) Leave(_ context.Context, roomID, playerID string) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return
	}
	if room.leave(playerID, s.notifier) {
		s.rooms.DeleteIfEmpty(roomID)
		s.logger.Info("room closed", "room", roomID)
	}
	s.logger.Debug("player left", "room", roomID, "player", playerID)
}

// Room returns a recipient-independent snapshot of a live room.
func (s *ExamService) Room(roomID string) (domain.RoomUpdate, bool) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.RoomUpdate{}, false
	}
	return room.Snapshot(), true
}

// expire runs when a room's deadline timer fires.
func (s *ExamService) expire(room *Room) {
	results := room.expire(s.notifier)
	if len(results) == 0 {
		return
	}
	s.logger.Info("exam deadline reached", "room", room.ID(), "autoFinished", len(results))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, res := range results {
		s.record(ctx, room.ID(), res)
	}
}

func (s *ExamService) record(ctx context.Context, roomID string, res playerResult) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordResult(ctx, roomID, res.player, res.result); err != nil {
		s.logger.Warn("record result failed", "room", roomID, "player", res.player.ID, "err", err)
	}
}
