package app

import (
	"testing"
	"time"

	"exam-room-service/internal/domain"
)

func TestRoomJoinOverwriteKeepsPosition(t *testing.T) {
	room := NewRoom("R1", bankWithCorrect("A", "B"))
	room.join("p1", "Alice", nopNotifier{})
	room.join("p2", "Bob", nopNotifier{})

	update, ok := room.join("p1", "Alicia", nopNotifier{})
	if !ok {
		t.Fatalf("expected join to succeed")
	}
	if len(update.Players) != 2 || update.Players[0].Name != "Alicia" || update.HostID != "p1" {
		t.Fatalf("expected overwrite in place, got %+v", update)
	}
}

func TestRoomRejoinResetsLedger(t *testing.T) {
	room := NewRoom("R1", bankWithCorrect("A"))
	room.join("p1", "Alice", nopNotifier{})
	if _, err := room.start("p1", 0, nopNotifier{}, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := room.submit("p1", domain.AnswerSubmission{QuestionID: 1, OptionKey: "A"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	room.join("p1", "Alice", nopNotifier{})

	res, err := room.finish("p1", nopNotifier{})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if res.result.Score != 0 {
		t.Fatalf("expected ledger reset on rejoin, got %+v", res.result)
	}
}

func TestClosedRoomRefusesCommands(t *testing.T) {
	room := NewRoom("R1", bankWithCorrect("A"))
	if !room.CloseIfEmpty() {
		t.Fatalf("expected empty room to close")
	}
	if _, ok := room.join("p1", "Alice", nopNotifier{}); ok {
		t.Fatalf("closed room accepted a join")
	}
	if _, err := room.start("p1", 0, nopNotifier{}, nil); err != domain.ErrRoomNotFound {
		t.Fatalf("expected room not found, got %v", err)
	}
}

func TestCloseIfEmptyKeepsOccupiedRoom(t *testing.T) {
	room := NewRoom("R1", bankWithCorrect("A"))
	room.join("p1", "Alice", nopNotifier{})
	if room.CloseIfEmpty() {
		t.Fatalf("occupied room must not close")
	}
	if room.leave("p1", nopNotifier{}) != true {
		t.Fatalf("expected leave to report empty roster")
	}
	if !room.IsEmpty() || !room.CloseIfEmpty() {
		t.Fatalf("expected empty room to close")
	}
}

func TestRoomStartStampsClock(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	room := NewRoomWithClock("R1", bankWithCorrect("A"), func() time.Time { return now })
	room.join("p1", "Alice", nopNotifier{})

	started, err := room.start("p1", 10*time.Minute, nopNotifier{}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.StartTime != now.UnixMilli() || started.Deadline != now.Add(10*time.Minute).UnixMilli() {
		t.Fatalf("unexpected timestamps %+v", started)
	}
	if started.DurationMS != (10 * time.Minute).Milliseconds() {
		t.Fatalf("unexpected duration %d", started.DurationMS)
	}

	now = now.Add(10 * time.Minute)
	if err := room.submit("p1", domain.AnswerSubmission{QuestionID: 1, OptionKey: "A"}); err != domain.ErrDeadlinePassed {
		t.Fatalf("expected deadline passed, got %v", err)
	}
	results := room.expire(nopNotifier{})
	if len(results) != 1 || results[0].player.ID != "p1" || results[0].result.Total != 1 {
		t.Fatalf("unexpected expire results %+v", results)
	}
	if again := room.expire(nopNotifier{}); len(again) != 0 {
		t.Fatalf("expire must not rescore finished players")
	}
}

func TestExpireBeforeDeadlineIsNoop(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	room := NewRoomWithClock("R1", bankWithCorrect("A"), func() time.Time { return now })
	room.join("p1", "Alice", nopNotifier{})
	if _, err := room.start("p1", time.Minute, nopNotifier{}, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if results := room.expire(nopNotifier{}); len(results) != 0 {
		t.Fatalf("expected no results before the deadline, got %+v", results)
	}
}
