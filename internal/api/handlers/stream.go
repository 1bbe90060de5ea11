package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// StreamHandler pushes the filtered view of a watchlist over a websocket
// ⭐ SSOT: the live watchlist stream is served only here
type StreamHandler struct {
	manager  *watchlist.Manager
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(manager *watchlist.Manager, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		manager: manager,
		logger:  log.WithComponent("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream sends the view on connect and after every change
// GET /api/watchlists/{cpf}/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	c, err := openSession(h.manager, r)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithCPF(c.Session().CPF)
	log.Debug("Stream opened")

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	go h.readLoop(conn, cancel)

	views := c.Watch(ctx)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Stream closed")
			return
		case stocks, ok := <-views:
			if !ok {
				h.writeClose(conn)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(newListResponse(c, stocks)); err != nil {
				log.WithError(err).Debug("Stream write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				log.WithError(err).Debug("Failed to send ping")
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed
func (h *StreamHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) writeClose(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "watchlist closed")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
