package app

import (
	"sync"
	"time"

	"exam-room-service/internal/domain"
)

// Notifier delivers an event to a single connected player. Implementations
// must not block: rooms call it while holding their lock so that events reach
// every member in mutation order.
type Notifier interface {
	Notify(playerID string, event domain.Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, domain.Event) {}

// Room is one exam session. All state is guarded by mu; the roster keeps
// insertion order so the host is always the earliest surviving member.
type Room struct {
	id  string
	now func() time.Time

	mu        sync.Mutex
	state     domain.RoomState
	questions []domain.Question
	startedAt time.Time
	deadline  time.Time
	order     []string
	players   map[string]*domain.Player
	timer     *time.Timer
	closed    bool
}

// playerResult pairs a finished player with their score.
type playerResult struct {
	player domain.PlayerView
	result domain.ExamResult
}

// NewRoom creates a waiting room holding a private copy of the bank's questions.
func NewRoom(id string, bank domain.QuestionBank) *Room {
	return NewRoomWithClock(id, bank, time.Now)
}

// NewRoomWithClock allows deterministic timestamps in tests.
func NewRoomWithClock(id string, bank domain.QuestionBank, now func() time.Time) *Room {
	return &Room{
		id:        id,
		now:       now,
		state:     domain.RoomWaiting,
		questions: bank.Snapshot(),
		players:   make(map[string]*domain.Player),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// Snapshot returns the roster and state without a recipient.
func (r *Room) Snapshot() domain.RoomUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked("")
}

// IsEmpty reports whether the roster is empty.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

// CloseIfEmpty closes the room when nobody is left in it and reports whether it
// did. A closed room refuses joins and its deadline timer is stopped. Registries
// call this under their own lock before dropping the room.
func (r *Room) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return true
	}
	if len(r.players) > 0 {
		return false
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	return true
}

// join inserts or overwrites a player. It returns false only when the room has
// already been closed, in which case the caller must look the room up again.
func (r *Room) join(playerID, name string, out Notifier) (domain.RoomUpdate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.RoomUpdate{}, false
	}

	if player, ok := r.players[playerID]; ok {
		player.Name = name
		player.Score = 0
		player.Answers = make(map[int]string)
		player.Finished = false
	} else {
		r.order = append(r.order, playerID)
		r.players[playerID] = &domain.Player{
			ID:       playerID,
			Name:     name,
			Answers:  make(map[int]string),
			JoinedAt: r.now(),
		}
	}
	r.broadcastRosterLocked(out)
	return r.snapshotLocked(playerID), true
}

func (r *Room) start(playerID string, duration time.Duration, out Notifier, onExpire func()) (domain.GameStarted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.GameStarted{}, domain.ErrRoomNotFound
	}
	if _, ok := r.players[playerID]; !ok {
		return domain.GameStarted{}, domain.ErrPlayerNotFound
	}
	if r.hostLocked() != playerID {
		return domain.GameStarted{}, domain.ErrNotHost
	}
	if r.state == domain.RoomPlaying {
		return domain.GameStarted{}, domain.ErrAlreadyStarted
	}

	now := r.now()
	r.state = domain.RoomPlaying
	r.startedAt = now
	// A finish sent while waiting does not count toward the exam.
	for _, player := range r.players {
		player.Score = 0
		player.Finished = false
	}

	started := domain.GameStarted{
		Questions: make([]domain.PublicQuestion, len(r.questions)),
		StartTime: now.UnixMilli(),
	}
	for i, q := range r.questions {
		started.Questions[i] = q.Public()
	}
	if duration > 0 {
		r.deadline = now.Add(duration)
		started.Deadline = r.deadline.UnixMilli()
		started.DurationMS = duration.Milliseconds()
		if onExpire != nil {
			r.timer = time.AfterFunc(duration, onExpire)
		}
	}

	event := domain.Event{Type: domain.EventGameStarted, Payload: started}
	for _, id := range r.order {
		out.Notify(id, event)
	}
	r.broadcastRosterLocked(out)
	return started, nil
}

func (r *Room) submit(playerID string, submission domain.AnswerSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.ErrRoomNotFound
	}
	player, ok := r.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if r.state != domain.RoomPlaying {
		return domain.ErrNotPlaying
	}
	if !r.deadline.IsZero() && !r.now().Before(r.deadline) {
		return domain.ErrDeadlinePassed
	}
	if player.Finished {
		return domain.ErrAlreadyFinished
	}

	question, ok := r.questionLocked(submission.QuestionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if _, ok := question.Options[submission.OptionKey]; !ok {
		return domain.ErrOptionNotFound
	}
	player.Answers[submission.QuestionID] = submission.OptionKey
	return nil
}

func (r *Room) finish(playerID string, out Notifier) (playerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return playerResult{}, domain.ErrRoomNotFound
	}
	player, ok := r.players[playerID]
	if !ok {
		return playerResult{}, domain.ErrPlayerNotFound
	}
	res := r.finishLocked(player, out)
	r.broadcastRosterLocked(out)
	return res, nil
}

// expire scores every player that has not finished yet. It is a no-op unless
// the room is playing and its deadline has been reached.
func (r *Room) expire(out Notifier) []playerResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timer = nil
	if r.closed || r.state != domain.RoomPlaying || r.deadline.IsZero() || r.now().Before(r.deadline) {
		return nil
	}

	var results []playerResult
	for _, id := range r.order {
		player := r.players[id]
		if player.Finished {
			continue
		}
		results = append(results, r.finishLocked(player, out))
	}
	if len(results) > 0 {
		r.broadcastRosterLocked(out)
	}
	return results
}

// leave removes the player and reports whether the roster is now empty.
func (r *Room) leave(playerID string, out Notifier) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[playerID]; !ok {
		return len(r.players) == 0
	}
	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.broadcastRosterLocked(out)
	return len(r.players) == 0
}

func (r *Room) finishLocked(player *domain.Player, out Notifier) playerResult {
	result := Score(r.questions, player.Answers)
	player.Score = result.Score
	player.Finished = true
	out.Notify(player.ID, domain.Event{Type: domain.EventExamResult, Payload: result})
	return playerResult{
		player: domain.PlayerView{ID: player.ID, Name: player.Name, Score: player.Score, Finished: true},
		result: result,
	}
}

func (r *Room) questionLocked(id int) (domain.Question, bool) {
	for _, q := range r.questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

func (r *Room) hostLocked() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

func (r *Room) broadcastRosterLocked(out Notifier) {
	base := r.snapshotLocked("")
	for _, id := range r.order {
		update := base
		update.IsHost = id == base.HostID
		out.Notify(id, domain.Event{Type: domain.EventRoomUpdate, Payload: update})
	}
}

func (r *Room) snapshotLocked(recipient string) domain.RoomUpdate {
	players := make([]domain.PlayerView, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		players = append(players, domain.PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Finished: p.Finished,
		})
	}
	host := r.hostLocked()
	return domain.RoomUpdate{
		RoomID:  r.id,
		Players: players,
		State:   r.state,
		HostID:  host,
		IsHost:  recipient != "" && recipient == host,
	}
}
