package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"exam-room-service/internal/app"
	"exam-room-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Inbound command types.
const (
	cmdJoin   = "join"
	cmdStart  = "start"
	cmdSubmit = "submit"
	cmdFinish = "finish"
)

type WSHandler struct {
	service  *app.ExamService
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ExamService, hub *Hub, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
}

type submitPayload struct {
	RoomID     string `json:"roomId"`
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

type connectedPayload struct {
	ID string `json:"id"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	errBadPayload  = errors.New("invalid payload")
	errUnsupported = errors.New("unsupported message type")
)

// connection is the per-socket state owned by the read loop.
type connection struct {
	playerID string
	roomID   string
}

// ServeWS upgrades HTTP requests to websockets and wires them into the exam use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &connection{playerID: uuid.NewString()}
	send := h.hub.Register(c.playerID)
	writerDone := make(chan struct{})
	go h.writePump(conn, send, writerDone)

	h.logger.Debug("connection opened", "player", c.playerID, "remote", r.RemoteAddr)
	h.hub.Notify(c.playerID, domain.Event{Type: domain.EventConnected, Payload: connectedPayload{ID: c.playerID}})

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("ws read error", "player", c.playerID, "err", err)
			}
			break
		}
		if err := h.dispatch(ctx, c, inbound); err != nil {
			h.hub.Notify(c.playerID, domain.Event{Type: domain.EventError, Payload: errorPayload{
				Code:    errorCode(err),
				Message: err.Error(),
			}})
		}
	}

	if c.roomID != "" {
		h.service.Leave(context.Background(), c.roomID, c.playerID)
	}
	h.hub.Unregister(c.playerID)
	<-writerDone
	h.logger.Debug("connection closed", "player", c.playerID)
}

func (h *WSHandler) dispatch(ctx context.Context, c *connection, msg inboundMessage) error {
	switch msg.Type {
	case cmdJoin:
		var payload joinPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errBadPayload
		}
		// A connection sits in at most one room.
		if c.roomID != "" && c.roomID != payload.RoomID {
			h.service.Leave(ctx, c.roomID, c.playerID)
			c.roomID = ""
		}
		if _, err := h.service.Join(ctx, payload.RoomID, c.playerID, payload.Name); err != nil {
			return err
		}
		c.roomID = payload.RoomID
		return nil

	case cmdStart:
		roomID, err := roomIDFrom(msg.Payload, c.roomID)
		if err != nil {
			return err
		}
		_, err = h.service.Start(ctx, roomID, c.playerID)
		return err

	case cmdSubmit:
		var payload submitPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errBadPayload
		}
		if payload.RoomID == "" {
			payload.RoomID = c.roomID
		}
		return h.service.SubmitAnswer(ctx, payload.RoomID, c.playerID, domain.AnswerSubmission{
			QuestionID: payload.QuestionID,
			OptionKey:  payload.Answer,
		})

	case cmdFinish:
		roomID, err := roomIDFrom(msg.Payload, c.roomID)
		if err != nil {
			return err
		}
		_, err = h.service.Finish(ctx, roomID, c.playerID)
		return err

	default:
		return errUnsupported
	}
}

// roomIDFrom accepts either a bare JSON string or {"roomId": "..."} and falls
// back to the connection's current room.
func roomIDFrom(raw json.RawMessage, current string) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return current, nil
	}
	var roomID string
	if err := json.Unmarshal(raw, &roomID); err == nil {
		if roomID == "" {
			return current, nil
		}
		return roomID, nil
	}
	var obj struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", errBadPayload
	}
	if obj.RoomID == "" {
		return current, nil
	}
	return obj.RoomID, nil
}

func (h *WSHandler) writePump(conn *websocket.Conn, send <-chan domain.Event, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case event, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("ws write error", "err", err)
				_ = conn.Close()
				drain(send)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				drain(send)
				return
			}
		}
	}
}

// drain discards queued events until the hub closes the queue. Closing the
// conn first unblocks the read loop, which unregisters the player.
func drain(send <-chan domain.Event) {
	for range send {
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidJoin):
		return "invalid_join"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, domain.ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, domain.ErrNotHost):
		return "not_host"
	case errors.Is(err, domain.ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, domain.ErrNotPlaying):
		return "not_playing"
	case errors.Is(err, domain.ErrDeadlinePassed):
		return "deadline_passed"
	case errors.Is(err, domain.ErrAlreadyFinished):
		return "already_finished"
	case errors.Is(err, domain.ErrQuestionNotFound):
		return "question_not_found"
	case errors.Is(err, domain.ErrOptionNotFound):
		return "option_not_found"
	case errors.Is(err, domain.ErrBankNotFound), errors.Is(err, domain.ErrInvalidBank):
		return "bank_unavailable"
	case errors.Is(err, errBadPayload):
		return "bad_payload"
	case errors.Is(err, errUnsupported):
		return "unsupported"
	default:
		return "internal"
	}
}
