package http

import (
	"log/slog"
	"sync"

	"exam-room-service/internal/domain"
)

const sendBuffer = 32

// Hub maps connection-scoped player ids to their outbound queues and
// implements app.Notifier.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]chan domain.Event
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]chan domain.Event),
	}
}

// Register allocates the outbound queue of a new connection.
func (h *Hub) Register(playerID string) <-chan domain.Event {
	ch := make(chan domain.Event, sendBuffer)
	h.mu.Lock()
	h.clients[playerID] = ch
	h.mu.Unlock()
	return ch
}

// Unregister closes and forgets the queue. Safe to call more than once.
func (h *Hub) Unregister(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[playerID]; ok {
		delete(h.clients, playerID)
		close(ch)
	}
}

// Notify queues an event without blocking. When the queue is full the oldest
// event is dropped to make room.
func (h *Hub) Notify(playerID string, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.clients[playerID]
	if !ok {
		return
	}
	select {
	case ch <- event:
		return
	default:
	}

	select {
	case dropped := <-ch:
		h.logger.Warn("send queue full, dropping event", "player", playerID, "dropped", dropped.Type)
	default:
	}
	select {
	case ch <- event:
	default:
		h.logger.Warn("send queue full, dropping event", "player", playerID, "dropped", event.Type)
	}
}

// Connected reports how many connections are registered.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
