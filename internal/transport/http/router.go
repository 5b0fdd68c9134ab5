package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"exam-room-service/internal/app"
	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// RoomHandler serves read-only room endpoints.
type RoomHandler struct {
	service   *app.ExamService
	publicURL string
	logger    *slog.Logger
}

func NewRoomHandler(service *app.ExamService, publicURL string, logger *slog.Logger) *RoomHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomHandler{
		service:   service,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}
}

// NewRouter wires the health check, room endpoints and the websocket gateway.
func NewRouter(rooms *RoomHandler, ws *WSHandler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}", rooms.Get).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}/qr.png", rooms.QR).Methods(http.MethodGet)

	return r
}

// Get handles GET /rooms/{roomId}.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	snapshot, ok := h.service.Room(roomID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorPayload{Code: "room_not_found", Message: "room not found"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// QR handles GET /rooms/{roomId}/qr.png and renders the room's join link.
func (h *RoomHandler) QR(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	png, err := qrcode.Encode(h.joinURL(r, roomID), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr encode failed", "room", roomID, "err", err)
		http.Error(w, "failed to render qr code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *RoomHandler) joinURL(r *http.Request, roomID string) string {
	base := h.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + url.QueryEscape(roomID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
