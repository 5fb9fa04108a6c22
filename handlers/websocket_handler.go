package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rodrigo-greising/game-theory-sub000/realtime"
	"github.com/rodrigo-greising/game-theory-sub000/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub            *realtime.Hub
	sessionService services.SessionService
	logger         *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, sessionService services.SessionService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		sessionService: sessionService,
		logger:         logger,
	}
}

// ServeWs обрабатывает WebSocket запросы для конкретной сессии.
// Клиент подключается к /ws/sessions/{sessionID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "Missing sessionID", http.StatusBadRequest)
		return
	}

	// Проверяем, что сессия существует, прежде чем создавать комнату.
	if _, err := h.sessionService.Get(r.Context(), sessionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, так что здесь просто логируем.
		h.logger.Error("failed to upgrade websocket connection", "session_id", sessionID, "error", err)
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: services.SessionRoom(sessionID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client registered", "room", client.Room)
}
