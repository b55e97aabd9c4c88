package handler

import (
	"net/http"
	"time"

	"github.com/drakeos/drakeos/internal/events"
	"github.com/drakeos/drakeos/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSHandler pushes desktop events to WebSocket clients
type WSHandler struct {
	bus    *events.Broadcaster
	logger *zap.Logger
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(bus *events.Broadcaster, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{bus: bus, logger: logger}
}

// HandleWS handles WebSocket upgrade and connection
func (h *WSHandler) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	ch := h.bus.Subscribe()
	metrics.AddWebSocketClients(1)
	defer func() {
		h.bus.Unsubscribe(ch)
		metrics.AddWebSocketClients(-1)
		_ = conn.Close()
	}()

	// Reader: clients send nothing we act on, but a failed read means the
	// connection is gone.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := events.MarshalEvent(ev)
			if err != nil {
				h.logger.Warn("marshal event", zap.String("type", ev.Type), zap.Error(err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
