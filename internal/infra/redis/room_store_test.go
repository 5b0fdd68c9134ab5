package redis

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"exam-room-service/internal/app"
	"exam-room-service/internal/domain"
	"exam-room-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRoomStoreMarksLiveRooms(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRoomStore(newClient(mr), time.Hour, nil)

	room := store.GetOrCreate("R1", sampleBank())
	if again := store.GetOrCreate("R1", sampleBank()); again != room {
		t.Fatalf("expected the same room instance")
	}
	if got := mr.HGet("exam:room:R1", "questions"); got != "1" {
		t.Fatalf("expected question count 1, got %q", got)
	}
	if got := mr.HGet("exam:room:R1", "bank"); got != "bank-1" {
		t.Fatalf("expected bank id, got %q", got)
	}
	if ttl := mr.TTL("exam:room:R1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	if _, ok := store.Get("R1"); !ok {
		t.Fatalf("expected room R1")
	}
	store.DeleteIfEmpty("R1")
	if _, ok := store.Get("R1"); ok {
		t.Fatalf("expected empty room to be deleted")
	}
	if mr.Exists("exam:room:R1") {
		t.Fatalf("expected liveness marker removed")
	}
}

func TestRoomStoreKeepsOccupiedRooms(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRoomStore(newClient(mr), time.Hour, nil)
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(map[string]domain.QuestionBank{
		"bank-1": sampleBank(),
	}), time.Minute)
	service := app.NewExamService(store, banks, nil, app.Options{BankID: "bank-1"})

	if _, err := service.Join(context.Background(), "R1", "p1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	store.DeleteIfEmpty("R1")
	if _, ok := store.Get("R1"); !ok {
		t.Fatalf("occupied room must survive")
	}
	if !mr.Exists("exam:room:R1") {
		t.Fatalf("occupied room must keep its marker")
	}

	service.Leave(context.Background(), "R1", "p1")
	if _, ok := store.Get("R1"); ok {
		t.Fatalf("expected room removed after last leave")
	}
	if mr.Exists("exam:room:R1") {
		t.Fatalf("expected marker removed after last leave")
	}
}

func TestRoomStoreLogsMarkerFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	client := newClient(mr)
	mr.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	store := NewRoomStore(client, time.Hour, logger)

	room := store.GetOrCreate("R1", sampleBank())
	if got, ok := store.Get("R1"); !ok || got != room {
		t.Fatalf("room must be registered even when redis is down")
	}
	if !strings.Contains(logs.String(), "room marker write failed") {
		t.Fatalf("expected marker write failure to be logged, got %q", logs.String())
	}

	store.DeleteIfEmpty("R1")
	if _, ok := store.Get("R1"); ok {
		t.Fatalf("expected empty room to be deleted")
	}
	if !strings.Contains(logs.String(), "room marker delete failed") {
		t.Fatalf("expected marker delete failure to be logged, got %q", logs.String())
	}
}
