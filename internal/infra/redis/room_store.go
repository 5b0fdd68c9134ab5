package redis

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"exam-room-service/internal/app"
	"exam-room-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const markerTimeout = 2 * time.Second

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - Rooms themselves live in a local map; their state is process-local and
//     not persisted across restarts.
//   - Redis carries a liveness hash per room (exam:room:{id}) with the creation
//     time and question count so operators and other instances can see which
//     rooms are open. Marker writes happen outside the registry lock and only
//     log on failure.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RoomStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomStore) GetOrCreate(roomID string, bank domain.QuestionBank) *app.Room {
	s.mu.Lock()
	if room, ok := s.rooms[roomID]; ok {
		s.mu.Unlock()
		return room
	}
	room := app.NewRoom(roomID, bank)
	s.rooms[roomID] = room
	s.mu.Unlock()

	s.markLive(roomID, bank)
	return room
}

func (s *RoomStore) Get(roomID string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

func (s *RoomStore) DeleteIfEmpty(roomID string) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok || !room.CloseIfEmpty() {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, roomID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.key(roomID)).Err(); err != nil {
		s.logger.Warn("room marker delete failed", "room", roomID, "err", err)
	}
}

func (s *RoomStore) markLive(roomID string, bank domain.QuestionBank) {
	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(roomID),
		"createdAt", strconv.FormatInt(s.now().UnixMilli(), 10),
		"bank", bank.ID,
		"questions", len(bank.Questions),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(roomID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("room marker write failed", "room", roomID, "err", err)
	}
}

func (s *RoomStore) key(roomID string) string {
	return "exam:room:" + roomID
}
