package live

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/challengeboard/internal/pipeline"
	"github.com/okian/challengeboard/pkg/logger"
)

const writeWait = 5 * time.Second

// EventSnapshot is the first message every new connection receives.
const EventSnapshot = "snapshot"

// Snapshotter provides the state a new display starts from.
type Snapshotter interface {
	Snapshot(ctx context.Context) (pipeline.View, error)
}

// Handler upgrades /live requests and streams hub messages.
type Handler struct {
	hub      *Hub
	source   Snapshotter
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewHandler creates the websocket handler. Displays on the kiosk LAN may be
// served from another origin, so every origin is accepted.
func NewHandler(hub *Hub, source Snapshotter) *Handler {
	return &Handler{
		hub:      hub,
		source:   source,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger.Get().Named("live"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.source.Snapshot(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(ctx, "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(ch)

	if err := write(conn, Message{Type: EventSnapshot, Data: view}); err != nil {
		return
	}

	// Displays never send anything; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := write(conn, msg); err != nil {
				h.logger.Debug(ctx, "live client write failed", logger.Error(err))
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func write(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
