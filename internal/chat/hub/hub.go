// Package hub manages realtime WebSocket connections, one per signed-in
// user, and pushes new messages to connected receivers.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chirp/internal/chat/presence"
	"chirp/internal/platform/middleware"
	"chirp/pkg/platform/httputil"

	dErrors "chirp/pkg/domain-errors"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Hub tracks live connections keyed by user ID. A user opening a second
// connection replaces the first.
type Hub struct {
	logger   *slog.Logger
	presence presence.Tracker
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*connection
}

type connection struct {
	ws *websocket.Conn

	// Serializes writes; gorilla connections allow one concurrent writer.
	writeMu sync.Mutex
}

func New(tracker presence.Tracker, logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger,
		presence: tracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*connection),
	}
}

// ServeHTTP upgrades the request and holds the connection open until the
// client disconnects. Must run behind the auth guard.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ident := middleware.Identity(r.Context())
	if ident == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no token provided"))
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			"error", err,
			"user_id", ident.ID,
		)
		return
	}

	h.register(r.Context(), ident.ID, ws)
	defer h.unregister(ident.ID, ws)

	h.readLoop(ident.ID, ws)
}

func (h *Hub) register(ctx context.Context, userID string, ws *websocket.Conn) {
	h.mu.Lock()
	if prev, ok := h.conns[userID]; ok {
		_ = prev.ws.Close()
	}
	h.conns[userID] = &connection{ws: ws}
	h.mu.Unlock()

	if err := h.presence.MarkOnline(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "failed to mark user online",
			"error", err,
			"user_id", userID,
		)
	}
}

func (h *Hub) unregister(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	// Only drop the entry if it still belongs to this connection; a
	// reconnect may have replaced it already.
	if cur, ok := h.conns[userID]; ok && cur.ws == ws {
		delete(h.conns, userID)
	}
	h.mu.Unlock()

	_ = ws.Close()

	ctx := context.Background()
	h.mu.RLock()
	_, stillConnected := h.conns[userID]
	h.mu.RUnlock()
	if !stillConnected {
		if err := h.presence.MarkOffline(ctx, userID); err != nil {
			h.logger.Warn("failed to mark user offline",
				"error", err,
				"user_id", userID,
			)
		}
	}
}

// readLoop drains client frames so close handshakes and pings are
// processed. Clients do not send application data; the socket is
// server-push only.
func (h *Hub) readLoop(userID string, ws *websocket.Conn) {
	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	go h.pingLoop(ws, done)
	defer close(done)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				h.logger.Warn("websocket read error",
					"error", err,
					"user_id", userID,
				)
			}
			return
		}
	}
}

func (h *Hub) pingLoop(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// Send pushes a JSON-encoded payload to the user's connection, if any.
// A user without a live connection is not an error.
func (h *Hub) Send(userID string, payload any) {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode realtime payload",
			"error", err,
			"user_id", userID,
		)
		return
	}

	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()

	_ = conn.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Warn("failed to push realtime payload",
			"error", err,
			"user_id", userID,
		)
	}
}

// Connected reports whether the user currently holds a live connection
// on this instance.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}
